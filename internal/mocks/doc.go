// Package mocks provides shared test doubles for the service dependencies.
//
// Function-field mocks (MockJWTService, MockPasswordVerifier,
// MockDispatcher) run the configured function when set and fall back to a
// simple default otherwise. MockUserStore is a testify/mock double for
// tests that assert on exact store calls.
//
//	jwt := &mocks.MockJWTService{
//	    ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
//	        return nil, auth.ErrExpiredToken
//	    },
//	}
package mocks
