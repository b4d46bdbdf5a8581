// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec

// AuthMethod records how a request proved its identity.
type AuthMethod string

const (
	AuthMethodBearer  AuthMethod = "bearer"
	AuthMethodSession AuthMethod = "session"
)

// AuthenticatedUser is the identity attached to a request after either the
// bearer or the session adapter has accepted it. Handlers only see this type.
type AuthenticatedUser struct {
	UserID string
	Method AuthMethod
}
