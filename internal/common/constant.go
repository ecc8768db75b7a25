package common

// AuthorizationHeaderName is the HTTP header that carries the access token
// on inbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is the expected scheme prefix of the Authorization header
// value, including the trailing space.
const BearerPrefix = "Bearer "
