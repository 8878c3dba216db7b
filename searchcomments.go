package todoist

type commentPredicate func(*Comment) bool

type CommentScan struct {
	client     *Client
	predicates []commentPredicate
}

func (s *CommentScan) WithTaskID(task ID) *CommentScan {
	s.predicates = append(s.predicates, func(comment *Comment) bool {
		return comment.TaskID == task
	})
	return s
}

func (s *CommentScan) Results() []*Comment {
	var results []*Comment
	for _, comment := range s.client.store.Comments() {
		if s.match(comment) {
			results = append(results, comment)
		}
	}
	return results
}

func (s *CommentScan) match(comment *Comment) bool {
	for _, match := range s.predicates {
		if !match(comment) {
			return false
		}
	}
	return true
}

func (c *Client) SearchComments() *CommentScan {
	return &CommentScan{
		client: c,
	}
}
