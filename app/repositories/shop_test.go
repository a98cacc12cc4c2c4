package repositories_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diamantrouge/maison/app/models"
	"github.com/diamantrouge/maison/app/repositories"
	"github.com/diamantrouge/maison/internal/testdb"
)

func customer(t *testing.T, repo *repositories.UserRepository) *models.User {
	t.Helper()
	u, err := repo.FindByEmail(context.Background(), "Customer@Diamant-Rouge.com")
	require.NoError(t, err)
	return u
}

func uintPtr(v uint) *uint { return &v }

func TestCartLineLookupDistinguishesVariation(t *testing.T) {
	db := testdb.Seeded(t)
	ctx := context.Background()
	u := customer(t, repositories.NewUserRepository(db))
	cart := repositories.NewCartRepository(db)

	require.NoError(t, cart.Create(ctx, &models.CartItem{UserID: u.ID, ProductID: 1, Quantity: 1}))
	require.NoError(t, cart.Create(ctx, &models.CartItem{UserID: u.ID, ProductID: 1, VariationID: uintPtr(2), Quantity: 1}))

	plain, err := cart.FindLine(ctx, u.ID, 1, nil)
	require.NoError(t, err)
	assert.Nil(t, plain.VariationID)

	sized, err := cart.FindLine(ctx, u.ID, 1, uintPtr(2))
	require.NoError(t, err)
	require.NoError(t, cart.Increment(ctx, sized.ID, 2))

	lines, err := cart.ListForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 3, lines[1].Quantity)
	require.NotNil(t, lines[1].Variation)
	assert.Equal(t, "50", lines[1].Variation.VariationValue)

	_, err = cart.FindLine(ctx, u.ID, 2, nil)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	n, err := cart.Clear(ctx, u.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestWishlistAddIsIdempotent(t *testing.T) {
	db := testdb.Seeded(t)
	ctx := context.Background()
	u := customer(t, repositories.NewUserRepository(db))
	wl := repositories.NewWishlistRepository(db)

	first, err := wl.Add(ctx, u.ID, 1)
	require.NoError(t, err)
	second, err := wl.Add(ctx, u.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	entries, err := wl.ListForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	removed, err := wl.Remove(ctx, u.ID, 1)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = wl.Remove(ctx, u.ID, 1)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestPlaceFromCart(t *testing.T) {
	db := testdb.Seeded(t)
	ctx := context.Background()
	u := customer(t, repositories.NewUserRepository(db))
	cart := repositories.NewCartRepository(db)
	orders := repositories.NewOrderRepository(db)

	_, err := orders.PlaceFromCart(ctx, u.ID, nil)
	assert.ErrorIs(t, err, repositories.ErrEmptyCart)

	require.NoError(t, cart.Create(ctx, &models.CartItem{UserID: u.ID, ProductID: 1, VariationID: uintPtr(1), Quantity: 2}))

	order, err := orders.PlaceFromCart(ctx, u.ID, func(lines []models.CartItem) (*models.Order, error) {
		o := &models.Order{UserID: &u.ID, Status: models.OrderPending, PaymentMethod: models.PaymentPayPal}
		for _, l := range lines {
			price := l.Product.UnitPrice(l.Variation)
			o.OrderItems = append(o.OrderItems, models.OrderItem{
				ProductID: l.ProductID, VariationID: l.VariationID, Quantity: l.Quantity, Price: price,
			})
			o.TotalAmount = o.TotalAmount.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
		}
		return o, nil
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("9999.98").Equal(order.TotalAmount))

	lines, err := cart.ListForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, lines)

	mine, err := orders.ListForUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.Len(t, mine[0].OrderItems, 1)
	assert.Equal(t, 2, mine[0].OrderItems[0].Quantity)

	require.NoError(t, orders.UpdateStatus(ctx, order.ID, models.OrderShipped))
	shipped, err := orders.List(ctx, models.OrderShipped)
	require.NoError(t, err)
	require.Len(t, shipped, 1)
	require.NotNil(t, shipped[0].User)
	assert.Equal(t, u.Email, shipped[0].User.Email)

	assert.ErrorIs(t, orders.UpdateStatus(ctx, 999, models.OrderShipped), repositories.ErrNotFound)
}

func TestPlaceFromCartRollsBack(t *testing.T) {
	db := testdb.Seeded(t)
	ctx := context.Background()
	u := customer(t, repositories.NewUserRepository(db))
	cart := repositories.NewCartRepository(db)
	require.NoError(t, cart.Create(ctx, &models.CartItem{UserID: u.ID, ProductID: 2, Quantity: 1}))

	boom := errors.New("boom")
	_, err := repositories.NewOrderRepository(db).PlaceFromCart(ctx, u.ID, func([]models.CartItem) (*models.Order, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	lines, err := cart.ListForUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, lines, 1)
}

func TestUserResetTokenLifecycle(t *testing.T) {
	db := testdb.Seeded(t)
	ctx := context.Background()
	users := repositories.NewUserRepository(db)
	u := customer(t, users)

	now := time.Now().UTC()
	require.NoError(t, users.SetResetToken(ctx, u.ID, "digest", now.Add(6*time.Hour)))

	found, err := users.FindByResetToken(ctx, "digest", now)
	require.NoError(t, err)
	assert.Equal(t, u.ID, found.ID)

	_, err = users.FindByResetToken(ctx, "digest", now.Add(7*time.Hour))
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	require.NoError(t, users.ResetPassword(ctx, u.ID, "new-hash"))
	_, err = users.FindByResetToken(ctx, "digest", now)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}

func TestUserDeleteDetachesOrders(t *testing.T) {
	db := testdb.Seeded(t)
	ctx := context.Background()
	users := repositories.NewUserRepository(db)
	u := customer(t, users)

	require.NoError(t, repositories.NewCartRepository(db).Create(ctx, &models.CartItem{UserID: u.ID, ProductID: 1, Quantity: 1}))
	_, err := repositories.NewWishlistRepository(db).Add(ctx, u.ID, 2)
	require.NoError(t, err)
	require.NoError(t, repositories.NewNotificationRepository(db).Create(ctx, &models.Notification{
		UserID: u.ID, Type: models.NotificationNewCollection, Message: "Nouvelle collection",
	}))
	order := &models.Order{UserID: &u.ID, TotalAmount: decimal.NewFromInt(1), PaymentMethod: models.PaymentPayPal}
	require.NoError(t, db.Create(order).Error)

	require.NoError(t, users.Delete(ctx, u.ID))

	_, err = users.Find(ctx, u.ID)
	assert.ErrorIs(t, err, repositories.ErrNotFound)

	kept, err := repositories.NewOrderRepository(db).Find(ctx, order.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.UserID)

	var carts int64
	require.NoError(t, db.Model(&models.CartItem{}).Count(&carts).Error)
	assert.Zero(t, carts)

	assert.ErrorIs(t, users.Delete(ctx, u.ID), repositories.ErrNotFound)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := testdb.Seeded(t)
	err := repositories.NewUserRepository(db).Create(context.Background(), &models.User{
		Email: "VIP@diamant-rouge.com", Password: "x",
	})
	assert.ErrorIs(t, err, repositories.ErrDuplicate)
}
