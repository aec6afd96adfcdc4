package constants

const (
	AppStorefront = "ecfresh-storefront"

	// Fixed key namespace for the durable cart/wishlist mirror. The
	// storefront is the sole writer of these keys.
	KeyCart     = "ecfresh-cart"
	KeyWishlist = "ecfresh-wishlist"
	KeyPin      = "ecfresh-pin"
)
