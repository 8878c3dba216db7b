package todoist

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrCorrupted can be returned by Load.
var ErrCorrupted = errors.New("local data is corrupted")

// Names of the files, within the state directory, holding the dumped store and its checksum.
const (
	StateDataFile = "state.data"
	StateSumFile  = "state.sum"
)

// storeData is what the store persists (Dump, Load).
type storeData struct {
	Projects []*Project `json:"projects"`
	Tasks    []*Task    `json:"tasks"`
	Labels   []*Label   `json:"labels"`
	Comments []*Comment `json:"comments"`
}

// Store is the local mirror of the remote projects, tasks, labels and comments. Entities are kept in insertion
// order and ids are unique within each list. Everything going in and out is copied, so that values held by
// callers never alias the store's. It is safe for concurrent use.
type Store struct {
	mu   sync.RWMutex
	data storeData
}

func NewStore() *Store {
	return new(Store)
}

func upsert[T any](list []*T, v *T, key func(*T) ID) []*T {
	for i, old := range list {
		if key(old) == key(v) {
			list[i] = v
			return list
		}
	}
	return append(list, v)
}

func replaceExisting[T any](list []*T, v *T, key func(*T) ID) {
	for i, old := range list {
		if key(old) == key(v) {
			list[i] = v
			return
		}
	}
}

func filter[T any](list []*T, keep func(*T) bool) []*T {
	var kept []*T
	for _, v := range list {
		if keep(v) {
			kept = append(kept, v)
		}
	}
	return kept
}

func find[T any](list []*T, id ID, key func(*T) ID) (*T, bool) {
	for _, v := range list {
		if key(v) == id {
			return v, true
		}
	}
	return nil, false
}

func projectKey(p *Project) ID { return p.ID }
func taskKey(t *Task) ID { return t.ID }
func labelKey(l *Label) ID { return l.ID }
func commentKey(c *Comment) ID { return c.ID }

func copyProject(p *Project) *Project {
	c := *p
	return &c
}

func copyLabel(l *Label) *Label {
	c := *l
	return &c
}

func copyComment(c *Comment) *Comment {
	cc := *c
	return &cc
}

// AddProject appends the project, or replaces the project with the same id in place.
func (s *Store) AddProject(p *Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Projects = upsert(s.data.Projects, copyProject(p), projectKey)
}

// UpdateProject replaces the project with the same id. Unknown projects are ignored.
func (s *Store) UpdateProject(p *Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	replaceExisting(s.data.Projects, copyProject(p), projectKey)
}

// RemoveProject removes the project and its tasks (and their comments).
func (s *Store) RemoveProject(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Projects = filter(s.data.Projects, func(p *Project) bool { return p.ID != id })
	s.data.Tasks = filter(s.data.Tasks, func(t *Task) bool { return t.ProjectID != id })
	s.dropOrphanComments()
}

// ReplaceProjects discards all projects and keeps the given ones, in order.
func (s *Store) ReplaceProjects(projects []*Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Projects = nil
	for _, p := range projects {
		s.data.Projects = upsert(s.data.Projects, copyProject(p), projectKey)
	}
}

func (s *Store) ProjectByID(id ID) (*Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := find(s.data.Projects, id, projectKey); ok {
		return copyProject(p), true
	}
	return nil, false
}

// Projects returns a copy of all projects in insertion order.
func (s *Store) Projects() []*Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	projects := make([]*Project, 0, len(s.data.Projects))
	for _, p := range s.data.Projects {
		projects = append(projects, copyProject(p))
	}
	return projects
}

// Favorites returns the favorite projects, in the same order as Projects.
func (s *Store) Favorites() []*Project {
	return filter(s.Projects(), func(p *Project) bool { return p.IsFavorite })
}

// AddTask appends the task, or replaces the task with the same id in place.
func (s *Store) AddTask(t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Tasks = upsert(s.data.Tasks, t.clone(), taskKey)
}

// UpdateTask replaces the task with the same id. Unknown tasks are ignored.
func (s *Store) UpdateTask(t *Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	replaceExisting(s.data.Tasks, t.clone(), taskKey)
}

// RemoveTask removes the task, its subtasks at any depth and the comments of all of them.
func (s *Store) RemoveTask(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gone := map[ID]bool{id: true}
	for grown := true; grown; {
		grown = false
		for _, t := range s.data.Tasks {
			if !gone[t.ID] && t.ParentID != "" && gone[t.ParentID] {
				gone[t.ID] = true
				grown = true
			}
		}
	}
	s.data.Tasks = filter(s.data.Tasks, func(t *Task) bool { return !gone[t.ID] })
	s.dropOrphanComments()
}

// ReplaceTasks discards the tasks of the given project, or all tasks if the project id is empty, and appends the
// given ones. Comments of tasks no longer present are dropped.
func (s *Store) ReplaceTasks(projectID ID, tasks []*Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if projectID == "" {
		s.data.Tasks = nil
	} else {
		s.data.Tasks = filter(s.data.Tasks, func(t *Task) bool { return t.ProjectID != projectID })
	}
	for _, t := range tasks {
		s.data.Tasks = upsert(s.data.Tasks, t.clone(), taskKey)
	}
	s.dropOrphanComments()
}

// Subtasks returns the direct subtasks of the given task, in insertion order.
func (s *Store) Subtasks(parentID ID) []*Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tasks []*Task
	for _, t := range s.data.Tasks {
		if t.ParentID == parentID {
			tasks = append(tasks, t.clone())
		}
	}
	return tasks
}

// dropOrphanComments removes the comments of tasks no longer mirrored. Callers hold the write lock.
func (s *Store) dropOrphanComments() {
	present := make(map[ID]bool, len(s.data.Tasks))
	for _, t := range s.data.Tasks {
		present[t.ID] = true
	}
	s.data.Comments = filter(s.data.Comments, func(c *Comment) bool { return c.TaskID == "" || present[c.TaskID] })
}

func (s *Store) TaskByID(id ID) (*Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := find(s.data.Tasks, id, taskKey); ok {
		return t.clone(), true
	}
	return nil, false
}

// Tasks returns a copy of all tasks in insertion order.
func (s *Store) Tasks() []*Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tasks := make([]*Task, 0, len(s.data.Tasks))
	for _, t := range s.data.Tasks {
		tasks = append(tasks, t.clone())
	}
	return tasks
}

func (s *Store) AddLabel(l *Label) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Labels = upsert(s.data.Labels, copyLabel(l), labelKey)
}

func (s *Store) RemoveLabel(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Labels = filter(s.data.Labels, func(l *Label) bool { return l.ID != id })
}

func (s *Store) ReplaceLabels(labels []*Label) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Labels = nil
	for _, l := range labels {
		s.data.Labels = upsert(s.data.Labels, copyLabel(l), labelKey)
	}
}

func (s *Store) LabelByID(id ID) (*Label, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if l, ok := find(s.data.Labels, id, labelKey); ok {
		return copyLabel(l), true
	}
	return nil, false
}

// LabelByName returns nil if no label has the given name.
func (s *Store) LabelByName(name string) *Label {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.data.Labels {
		if l.Name == name {
			return copyLabel(l)
		}
	}
	return nil
}

func (s *Store) Labels() []*Label {
	s.mu.RLock()
	defer s.mu.RUnlock()
	labels := make([]*Label, 0, len(s.data.Labels))
	for _, l := range s.data.Labels {
		labels = append(labels, copyLabel(l))
	}
	return labels
}

func (s *Store) AddComment(c *Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Comments = upsert(s.data.Comments, copyComment(c), commentKey)
}

func (s *Store) RemoveComment(id ID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Comments = filter(s.data.Comments, func(c *Comment) bool { return c.ID != id })
}

// ReplaceComments discards the comments of the given task and appends the given ones.
func (s *Store) ReplaceComments(taskID ID, comments []*Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.Comments = filter(s.data.Comments, func(c *Comment) bool { return c.TaskID != taskID })
	for _, c := range comments {
		s.data.Comments = upsert(s.data.Comments, copyComment(c), commentKey)
	}
}

func (s *Store) CommentByID(id ID) (*Comment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := find(s.data.Comments, id, commentKey); ok {
		return copyComment(c), true
	}
	return nil, false
}

func (s *Store) Comments() []*Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comments := make([]*Comment, 0, len(s.data.Comments))
	for _, c := range s.data.Comments {
		comments = append(comments, copyComment(c))
	}
	return comments
}

// Load replaces the store content with the state files found in dir. The files are checked against the saved
// checksum first, and ErrCorrupted is returned on mismatch.
func (s *Store) Load(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, StateDataFile))
	if err != nil {
		return err
	}
	savedSum, err := os.ReadFile(filepath.Join(dir, StateSumFile))
	if err != nil {
		return err
	}
	sum := sha256.Sum256(data)
	if len(savedSum) != len(sum) {
		return fmt.Errorf("length mismatch: %w", ErrCorrupted)
	}
	if !bytes.Equal(savedSum, sum[:]) {
		return fmt.Errorf("checksum mismatch: %w", ErrCorrupted)
	}
	var loaded storeData
	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}
	s.mu.Lock()
	s.data = loaded
	s.mu.Unlock()
	return nil
}

// Dump saves the store to a pair of files in dir, creating dir if needed. The data file is written before the
// checksum file, so a watcher should react to the latter. Each file is written to a temporary name first and then
// renamed into place, so readers never see a partially written file. All clients sharing a state directory
// overwrite each other's state.
func (s *Store) Dump(dir string) error {
	s.mu.RLock()
	data, err := json.Marshal(&s.data)
	s.mu.RUnlock()
	if err != nil {
		return err
	}
	sum := sha256.Sum256(data)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	if err := writeFileAtomic(filepath.Join(dir, StateDataFile), data); err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(dir, StateSumFile), sum[:])
}

func writeFileAtomic(pathname string, b []byte) error {
	f, err := os.CreateTemp(filepath.Dir(pathname), "."+filepath.Base(pathname)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, pathname); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
