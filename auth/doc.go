// Package auth groups the credential primitives of the reference backend:
//
//   - auth/jwt       signs and verifies the access and refresh tokens
//   - auth/password  hashes and verifies account passwords
//
// Both follow the repository conventions: Config structs with
// ApplyDefaults()/Validate(), constructor functions and mapstructure tags.
//
//	mock_api:
//	  jwt:
//	    secret: "change-me-to-a-long-secret"
//	    access_token_ttl: "15m"
//	  password:
//	    bcrypt_cost: 10
package auth
