package engine

// Identity is the access gate's verdict about a caller, resolved once at the
// HTTP boundary and passed into the engine. Engine code never re-derives
// roles from tokens or headers.
type Identity struct {
	UserID    uint
	Admin     bool
	CompanyID *uint
}

// CanActFor reports whether the identity may act on behalf of the given
// company. Admins may act for any company; company callers only for their own.
func (id Identity) CanActFor(companyID uint) bool {
	if id.Admin {
		return true
	}
	return id.CompanyID != nil && *id.CompanyID == companyID
}
