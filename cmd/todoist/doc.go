// The todoist program is an acme user interface to Todoist (https://todoist.com).
//
// The API token is expected at the file lib/todoist/token within the user's home directory, unless configured
// otherwise in lib/todoist/config.toml or through the TODOIST_API_TOKEN environment variable.
//
// When launched, it creates an initial window listing the favorite projects followed by all projects. Edit a
// project name there and Put to rename it; "Fav 1234" and "Unfav 1234" toggle favorites. Operation of the windows
// via middle-click and right-click should be fairly intuitive to an acme user so I mostly won't document it.
//
// Be careful with the Zap command as it will delete tasks, and projects along with all their tasks. You can also
// delete comments by 2-button-swiping "Zap 1234" where 1234 is a comment id, and labels with "Zap name". In a task
// window, "Move name" moves the task to the project with that name; since Todoist can only do that by copying, the
// task gets a new id.
//
// Example arguments to Search: All tasks labeled "next":  @next.  All tasks labeled "bug" containing the string
// "foobar":  @bug:foobar.  All tasks labeled "feature" but not labeled maybe:  @feature:-@maybe.  All tasks in
// projects containing the string foobar:  #foobar.
//
// So, in summary, prepending minus negates a condition; the colon combines conditions (i.e., represents the
// boolean AND); the @ symbol introduces a condition on the task label; the # symbol introduces a condition on
// the task project name, while the default condition looks for substring in tasks.
//
// The state is saved when the last window is closed. If another program, such as todo, rewrites the saved state
// meanwhile, the windows are reloaded from it.
package main // import "github.com/nicolagi/todoist-rest/cmd/todoist"
