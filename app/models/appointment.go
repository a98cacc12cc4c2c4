package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	AppointmentPending   = "PENDING"
	AppointmentConfirmed = "CONFIRMED"
	AppointmentCompleted = "COMPLETED"
	AppointmentCancelled = "CANCELLED"
)

var AppointmentStatuses = []string{AppointmentPending, AppointmentConfirmed, AppointmentCompleted, AppointmentCancelled}

// AppointmentType describes a consultation offered by the house.
type AppointmentType struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Duration int    `json:"duration"` // minutes
}

var AppointmentTypes = map[string]AppointmentType{
	"discovery":  {Key: "discovery", Label: "Découverte des Collections", Duration: 90},
	"bespoke":    {Key: "bespoke", Label: "Création Sur-Mesure", Duration: 120},
	"bridal":     {Key: "bridal", Label: "Collection Nuptiale", Duration: 90},
	"investment": {Key: "investment", Label: "Joaillerie d'Investissement", Duration: 120},
}

const ShowroomLocation = "casablanca"

// LocationLabel names where an appointment takes place.
func LocationLabel(location string) string {
	if location == ShowroomLocation {
		return "Showroom Casablanca"
	}
	return "Consultation Virtuelle"
}

type Appointment struct {
	ID     uint  `gorm:"primaryKey" json:"id"`
	UserID *uint `gorm:"index"      json:"userId"`
	User   *User `gorm:"constraint:OnDelete:SET NULL" json:"user,omitempty"`

	ClientName  string `gorm:"size:255;not null" json:"clientName"`
	ClientEmail string `gorm:"size:255"          json:"clientEmail"`
	ClientPhone string `gorm:"size:40"           json:"clientPhone"`

	AppointmentDate time.Time `gorm:"not null;index" json:"appointmentDate"`
	AppointmentTime string    `gorm:"size:5;not null" json:"appointmentTime"`
	Location        string    `gorm:"size:50;index"   json:"location"`
	AppointmentType string    `gorm:"size:30;index"   json:"appointmentType"`
	Duration        int       `gorm:"not null;default:90" json:"duration"`
	GuestCount      int       `gorm:"not null;default:1"  json:"guestCount"`

	Preferences     datatypes.JSON `json:"preferences,omitempty"`
	SpecialRequests string         `gorm:"type:text" json:"specialRequests"`
	AdminNotes      string         `gorm:"type:text" json:"adminNotes"`
	Status          string         `gorm:"size:20;not null;default:PENDING;index" json:"status"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TypeLabel returns the display name of the appointment type.
func (a Appointment) TypeLabel() string {
	if t, ok := AppointmentTypes[a.AppointmentType]; ok {
		return t.Label
	}
	return a.AppointmentType
}
