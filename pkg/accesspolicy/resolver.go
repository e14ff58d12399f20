package accesspolicy

// Principal is an authenticated subject along with its externally
// resolved group memberships. Membership resolution belongs to the
// group collaborator; the resolver never looks groups up on its own.
type Principal struct {
	UserID   string   `json:"user_id"`
	GroupIDs []string `json:"group_ids"`
}

// NewPrincipal initializes a principal with a deduplicated group set
func NewPrincipal(userID string, groupIDs ...string) Principal {
	return Principal{
		UserID:   userID,
		GroupIDs: dedup(groupIDs),
	}
}

// Can decides whether a principal may exercise a capability on a
// resource governed by a given policy.
//
// Precedence is fixed: owner > public > explicit list membership.
// There is no explicit deny entry; absence from every list is the only
// way to deny. Write grants imply read. The function is total: any
// malformed policy degrades to owner-only access, never to an error.
func Can(p Principal, policy ResourcePolicy, c Capability) bool {
	// owner override is absolute and checked first
	if p.UserID != "" && p.UserID == policy.OwnerID {
		return true
	}

	// a nil access control means public: read for everyone,
	// write for the owner alone
	if policy.AccessControl == nil {
		return c == CapRead
	}

	switch c {
	case CapRead:
		// the write list is consulted as well since write includes read
		return listGrants(policy.AccessControl.Read, p) ||
			listGrants(policy.AccessControl.Write, p)
	case CapWrite:
		return listGrants(policy.AccessControl.Write, p)
	}

	return false
}

func listGrants(l *AccessList, p Principal) bool {
	return l.HasUser(p.UserID) || l.HasAnyGroup(p.GroupIDs)
}

// MemberLookup resolves the member user ids of a group; injected by
// the membership collaborator for roster expansion
type MemberLookup func(groupID string) []string

// EffectiveRoster expands the access list of a given capability into
// the concrete set of user ids holding it: the owner, the directly
// listed users and the members of every listed group, deduplicated in
// that order. Intended for display and audit; the decision path in Can
// never expands groups.
func EffectiveRoster(policy ResourcePolicy, c Capability, membersOf MemberLookup) []string {
	roster := make([]string, 0)
	seen := make(map[string]struct{})

	add := func(userID string) {
		if userID == "" {
			return
		}

		if _, ok := seen[userID]; ok {
			return
		}

		seen[userID] = struct{}{}
		roster = append(roster, userID)
	}

	add(policy.OwnerID)

	l := policy.AccessControl.List(c)
	if l == nil {
		return roster
	}

	for _, id := range l.UserIDs {
		add(id)
	}

	if membersOf == nil {
		return roster
	}

	for _, gid := range l.GroupIDs {
		for _, id := range membersOf(gid) {
			add(id)
		}
	}

	return roster
}
