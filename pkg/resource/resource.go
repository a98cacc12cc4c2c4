// Package resource shapes models into the JSON the API exposes, so
// handlers can return a narrower view than the stored row.
//
//	var wishlistEntry = resource.Transformer[models.Wishlist](func(w models.Wishlist) resource.Map {
//	    return resource.Map{"id": w.ID, "productId": w.ProductID}
//	})
//
//	c.Success(wishlistEntry.Many(entries))
package resource

// Map is the output of a transformer.
type Map = map[string]any

// Transformer converts one value into its public shape.
type Transformer[T any] func(T) Map

// One transforms a single value.
func (t Transformer[T]) One(v T) Map { return t(v) }

// Many transforms a slice. The result is never nil so it encodes as [].
func (t Transformer[T]) Many(items []T) []Map {
	out := make([]Map, 0, len(items))
	for _, it := range items {
		out = append(out, t(it))
	}
	return out
}

// Pick keeps only the listed keys of m.
func Pick(m Map, keys ...string) Map {
	out := make(Map, len(keys))
	for _, k := range keys {
		if v, ok := m[k]; ok {
			out[k] = v
		}
	}
	return out
}
