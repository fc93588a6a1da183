package place

// UnknownName is returned when no spelling qualifies as the display name.
const UnknownName = "Ukjent"

// PreferredName picks the display name of a place. A lone variant wins
// outright. Otherwise the first primary name that is approved and
// prioritized wins, then the first adopted primary name.
func PreferredName(variants []NameVariant) string {
	if len(variants) == 1 {
		return variants[0].Text
	}

	for _, want := range []ApprovalStatus{ApprovedPrioritized, Adopted} {
		for _, v := range variants {
			if v.Status == PrimaryName && v.Approval == want {
				return v.Text
			}
		}
	}
	return UnknownName
}
