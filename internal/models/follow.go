package models

// FollowState holds both sides of an account's follow edges
type FollowState struct {
	Following  []int64 `json:"following"`
	FollowedBy []int64 `json:"followed_by"`
}

// FollowState returns copies of the account's follow lists
func (a *Account) FollowState() FollowState {
	return FollowState{
		Following:  append([]int64{}, a.Following...),
		FollowedBy: append([]int64{}, a.FollowedBy...),
	}
}

// IsFollowing reports whether the account follows id
func (a *Account) IsFollowing(id int64) bool {
	return containsID(a.Following, id)
}

// IsFollowedBy reports whether id follows the account
func (a *Account) IsFollowedBy(id int64) bool {
	return containsID(a.FollowedBy, id)
}

// RemoveFollowing drops every occurrence of id from the following list
func (a *Account) RemoveFollowing(id int64) bool {
	var removed bool
	a.Following, removed = removeID(a.Following, id)
	return removed
}

// RemoveFollowedBy drops every occurrence of id from the followed-by list
func (a *Account) RemoveFollowedBy(id int64) bool {
	var removed bool
	a.FollowedBy, removed = removeID(a.FollowedBy, id)
	return removed
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// removeID filters in place; rows written before duplicates were rejected may hold repeats
func removeID(ids []int64, id int64) ([]int64, bool) {
	out := ids[:0]
	removed := false
	for _, v := range ids {
		if v == id {
			removed = true
			continue
		}
		out = append(out, v)
	}
	return out, removed
}
