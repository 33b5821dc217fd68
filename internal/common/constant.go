package common

const (
	// RefreshTokenCookieName is the default cookie carrying the refresh token.
	RefreshTokenCookieName = "refreshToken"

	// DefaultUserPicture is assigned to users created without a picture.
	DefaultUserPicture = "/uploads/no-user-image.png"

	// AuthorizationHeaderName carries the bearer access token.
	AuthorizationHeaderName = "Authorization"
)
