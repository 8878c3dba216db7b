package todoist

import "strings"

type taskPredicate func(*Task) bool

func negate(p taskPredicate) taskPredicate {
	return func(task *Task) bool {
		return !p(task)
	}
}

type TaskScan struct {
	client     *Client
	predicates []taskPredicate
}

// Not negates the last predicate added.  It will panic if no predicates were added.
func (s *TaskScan) Not() *TaskScan {
	i := len(s.predicates) - 1
	s.predicates[i] = negate(s.predicates[i])
	return s
}

// WithProjectID looks for tasks in any of the given project IDs, that is, arguments are ORed together.
func (s *TaskScan) WithProjectID(value ...ID) *TaskScan {
	s.predicates = append(s.predicates, func(task *Task) bool {
		for _, pid := range value {
			if task.ProjectID == pid {
				return true
			}
		}
		return false
	})
	return s
}

func (s *TaskScan) WithCompleted(value bool) *TaskScan {
	s.predicates = append(s.predicates, func(task *Task) bool {
		return task.IsCompleted == value
	})
	return s
}

func (s *TaskScan) WithLabel(name string) *TaskScan {
	s.predicates = append(s.predicates, func(task *Task) bool {
		for _, label := range task.Labels {
			if label == name {
				return true
			}
		}
		return false
	})
	return s
}

// WithContent looks for tasks whose content or description contains the given substring.
func (s *TaskScan) WithContent(needle string) *TaskScan {
	s.predicates = append(s.predicates, func(task *Task) bool {
		return strings.Contains(task.Content, needle) || strings.Contains(task.Description, needle)
	})
	return s
}

func (s *TaskScan) WithDue() *TaskScan {
	s.predicates = append(s.predicates, func(task *Task) bool {
		return task.Due != nil
	})
	return s
}

// WithPriority matches tasks with at least the given priority (4 is the most urgent).
func (s *TaskScan) WithPriority(min int) *TaskScan {
	s.predicates = append(s.predicates, func(task *Task) bool {
		return task.Priority >= min
	})
	return s
}

// Results returns the matching tasks in store order.
func (s *TaskScan) Results() []*Task {
	var results []*Task
	for _, task := range s.client.store.Tasks() {
		if s.match(task) {
			results = append(results, task)
		}
	}
	return results
}

func (s *TaskScan) match(task *Task) bool {
	for _, match := range s.predicates {
		if !match(task) {
			return false
		}
	}
	return true
}

func (c *Client) SearchTasks() *TaskScan {
	return &TaskScan{
		client: c,
	}
}
