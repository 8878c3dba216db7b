package todoist

type labelPredicate func(*Label) bool

type LabelScan struct {
	client     *Client
	predicates []labelPredicate
}

func (s *LabelScan) WithFavorite(value bool) *LabelScan {
	s.predicates = append(s.predicates, func(label *Label) bool {
		return label.IsFavorite == value
	})
	return s
}

func (s *LabelScan) Results() []*Label {
	var results []*Label
	for _, label := range s.client.store.Labels() {
		if s.match(label) {
			results = append(results, label)
		}
	}
	return results
}

func (s *LabelScan) match(label *Label) bool {
	for _, match := range s.predicates {
		if !match(label) {
			return false
		}
	}
	return true
}

func (c *Client) SearchLabels() *LabelScan {
	return &LabelScan{
		client: c,
	}
}
