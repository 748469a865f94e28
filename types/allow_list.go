package types

// AllowList is an ordered set of raw category values. Membership is an exact,
// case-sensitive string match.
type AllowList struct {
	values []string
	lookup map[string]struct{}
}

func NewAllowList(values []string) AllowList {
	l := AllowList{
		lookup: make(map[string]struct{}, len(values)),
	}
	for _, v := range values {
		if _, ok := l.lookup[v]; ok {
			continue
		}
		l.lookup[v] = struct{}{}
		l.values = append(l.values, v)
	}
	return l
}

func (l AllowList) Contains(value string) bool {
	_, ok := l.lookup[value]
	return ok
}

// Values returns the allowed values in configured order
func (l AllowList) Values() []string {
	res := make([]string, len(l.values))
	copy(res, l.values)
	return res
}

func (l AllowList) Len() int {
	return len(l.values)
}
