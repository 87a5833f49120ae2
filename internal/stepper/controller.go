package stepper

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sdd-engine/sdd/internal/workspace"
)

var (
	// ErrItemNotFound is returned when a selected item is not in any workflow.
	ErrItemNotFound = errors.New("item not found")
	// ErrOutsideWorkspace is returned for file paths that escape the root.
	ErrOutsideWorkspace = errors.New("path outside workspace")
)

// Opener opens a file for the user, e.g. in an editor.
type Opener interface {
	Open(path string) error
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) error

// Open calls f(path).
func (f OpenerFunc) Open(path string) error { return f(path) }

// Controller resolves view requests against the latest workspace snapshot
// and remembers which item is on display.
type Controller struct {
	root   string
	opener Opener

	snapshot  *workspace.Snapshot
	currentWF string
	currentID string
}

// NewController creates a Controller. Relative file paths are resolved
// against root before being handed to opener.
func NewController(root string, opener Opener) *Controller {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Controller{root: root, opener: opener}
}

// SetSnapshot replaces the snapshot and, if an item is on display and still
// exists, returns a fresh ShowItemMessage for it. If the item vanished the
// display is cleared and ok is false.
func (c *Controller) SetSnapshot(s *workspace.Snapshot) (msg ShowItemMessage, ok bool) {
	c.snapshot = s
	if c.currentID == "" {
		return ShowItemMessage{}, false
	}
	msg, err := c.show(c.currentWF, c.currentID)
	if err != nil {
		c.currentWF, c.currentID = "", ""
		return ShowItemMessage{}, false
	}
	return msg, true
}

// Show displays the item with itemID. An empty workflowID searches every
// workflow and picks the first match.
func (c *Controller) Show(workflowID, itemID string) (ShowItemMessage, error) {
	msg, err := c.show(workflowID, itemID)
	if err != nil {
		return ShowItemMessage{}, err
	}
	c.currentWF, c.currentID = msg.WorkflowID, itemID
	return msg, nil
}

// Current returns the workflow and item ids on display, if any.
func (c *Controller) Current() (workflowID, itemID string) {
	return c.currentWF, c.currentID
}

// Handle processes a message from the view. SelectItem returns the message
// to show next; OpenFile opens the file and returns ok false.
func (c *Controller) Handle(m ViewMessage) (msg ShowItemMessage, ok bool, err error) {
	switch v := m.(type) {
	case SelectItemMessage:
		// Selection searches every workflow, matching how the view only
		// knows item ids.
		shown, serr := c.Show("", v.ItemID)
		if serr != nil {
			return ShowItemMessage{}, false, serr
		}
		return shown, true, nil
	case OpenFileMessage:
		if c.opener == nil {
			return ShowItemMessage{}, false, fmt.Errorf("no opener configured for %s", v.FilePath)
		}
		path, rerr := c.Resolve(v.FilePath)
		if rerr != nil {
			return ShowItemMessage{}, false, rerr
		}
		if oerr := c.opener.Open(path); oerr != nil {
			return ShowItemMessage{}, false, fmt.Errorf("opening %s: %w", v.FilePath, oerr)
		}
		return ShowItemMessage{}, false, nil
	default:
		return ShowItemMessage{}, false, fmt.Errorf("%w: %T", ErrUnknownMessage, m)
	}
}

// Resolve turns a workspace-relative path into a filesystem path. Paths
// that land outside the root, absolute or via "..", are rejected.
func (c *Controller) Resolve(path string) (string, error) {
	p := filepath.FromSlash(path)
	if !filepath.IsAbs(p) {
		p = filepath.Join(c.root, p)
	}
	p = filepath.Clean(p)
	rel, err := filepath.Rel(c.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideWorkspace, path)
	}
	return p, nil
}

func (c *Controller) show(workflowID, itemID string) (ShowItemMessage, error) {
	if c.snapshot == nil {
		return ShowItemMessage{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
	}
	for _, wf := range c.snapshot.Workflows {
		if workflowID != "" && wf.ID != workflowID {
			continue
		}
		if it := wf.FindItem(itemID); it != nil {
			return ShowItemMessage{
				Type:       TypeShowItem,
				Item:       it,
				AllItems:   wf.Items,
				WorkflowID: wf.ID,
			}, nil
		}
	}
	return ShowItemMessage{}, fmt.Errorf("%w: %s", ErrItemNotFound, itemID)
}
