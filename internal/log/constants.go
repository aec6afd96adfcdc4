package log

const (
	KeyAppName       = "app"
	KeyCart          = "cart"
	KeyCartCount     = "cartCount"
	KeyConfig        = "config"
	KeyEmail         = "email"
	KeyOrderNumber   = "orderNumber"
	KeyPersistKey    = "persistKey"
	KeyProcess       = "process"
	KeyProductID     = "productId"
	KeyQuantity      = "quantity"
	KeyRequestBody   = "requestBody"
	KeyRequestHeader = "requestHeader"
	KeyRequestHost   = "host"
	KeyRequestID     = "requestId"
	KeyRequestIp     = "requesterIP"
	KeyRequestMethod = "requestMethod"
	KeyRequestURI    = "requestURI"
	KeyRequestURL    = "requestURL"
	KeyState         = "state"
	KeyTag           = "tag"
	KeyUserID        = "userId"
	KeyVariantID     = "variantId"
	KeyWishlist      = "wishlist"
)
