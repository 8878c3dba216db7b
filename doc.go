// The todoist package contains a Todoist client for the REST API v2 documented at
// https://developer.todoist.com/rest/v2. The consumers are the acme user interface in cmd/todoist and the
// command line tool in cmd/todo.
//
// The client mirrors projects, tasks, labels and comments into a local Store. Every method that makes a remote
// call reflects its result into the store only once the call has succeeded: adding appends, updating replaces the
// entity with the same id, deleting removes it. There is no offline queue and no conflict resolution; the server
// is always right, and Pull replaces the mirror with what the server currently has.
//
// Lookup and search methods, e.g., TaskByID or SearchProjects, only read the local copy of the data and scan through
// it. That is inefficient, but project and task inventories are small.
//
// The store can be dumped to and loaded from a state directory, so that user interfaces can render immediately on
// start-up and several processes can share what they last saw.
package todoist // import "github.com/nicolagi/todoist-rest"
