package revenue

import "strings"

// Names is an ordered set of distinct entity names. Lookups go through the
// lower-cased projection; Original returns the casing found in the table.
type Names struct {
	original []string
	lower    []string
	maxWords int
}

// NewNames deduplicates values case-insensitively, keeping the first casing
// seen. Blank values are dropped.
func NewNames(values []string) *Names {
	n := &Names{}
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := normalizeName(v)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		n.original = append(n.original, v)
		n.lower = append(n.lower, key)
		if w := len(strings.Fields(key)); w > n.maxWords {
			n.maxWords = w
		}
	}
	return n
}

// Len returns the number of names.
func (n *Names) Len() int {
	if n == nil {
		return 0
	}
	return len(n.original)
}

// Original returns name i as it appears in the table.
func (n *Names) Original(i int) string { return n.original[i] }

// Lower returns the lower-cased, space-normalized form of name i.
func (n *Names) Lower(i int) string { return n.lower[i] }

// MaxWords returns the word count of the longest name.
func (n *Names) MaxWords() int {
	if n == nil {
		return 0
	}
	return n.maxWords
}

// All returns a copy of the names in original casing.
func (n *Names) All() []string {
	if n == nil {
		return nil
	}
	return append([]string(nil), n.original...)
}

// Vocabulary holds the distinct customer, division and account owner names
// of a table.
type Vocabulary struct {
	Customers *Names
	Divisions *Names
	Owners    *Names
}

// NewVocabulary derives the three name sets from t, in table order.
func NewVocabulary(t *Table) *Vocabulary {
	var customers, divisions, owners []string
	if t != nil {
		for _, r := range t.records {
			customers = append(customers, r.Customer)
			divisions = append(divisions, r.Division)
			owners = append(owners, r.AccountOwner)
		}
	}
	return &Vocabulary{
		Customers: NewNames(customers),
		Divisions: NewNames(divisions),
		Owners:    NewNames(owners),
	}
}

func normalizeName(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
