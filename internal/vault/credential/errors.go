// Copyright (c) 2026 SecurePass. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package credential

import "github.com/taibuivan/securepass/internal/platform/apperr"

// ErrCredentialNotFound covers missing ids, foreign ids, and ids that are not UUIDs.
var ErrCredentialNotFound = apperr.NotFound("Credential")
