// Package stepper drives the lifecycle detail view of a single workflow
// item. The controller sends ShowItemMessage to the view; the view answers
// with OpenFileMessage or SelectItemMessage.
package stepper

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sdd-engine/sdd/internal/workflow"
)

// Message type tags.
const (
	TypeShowItem   = "showItem"
	TypeOpenFile   = "openFile"
	TypeSelectItem = "selectItem"
)

// ErrUnknownMessage is returned for view messages with an unrecognised type.
var ErrUnknownMessage = errors.New("unknown view message type")

// ShowItemMessage asks the view to display an item. AllItems is the item's
// workflow so the view can resolve dependencies and children.
type ShowItemMessage struct {
	Type       string          `json:"type"`
	Item       workflow.Item   `json:"item"`
	AllItems   []workflow.Item `json:"allItems"`
	WorkflowID string          `json:"workflowId"`
}

// ViewMessage is a message sent from the view to the controller: either
// OpenFileMessage or SelectItemMessage.
type ViewMessage interface {
	viewMessage()
}

// OpenFileMessage asks the controller to open a workspace-relative file.
type OpenFileMessage struct {
	Type     string `json:"type"`
	FilePath string `json:"filePath"`
}

func (OpenFileMessage) viewMessage() {}

// SelectItemMessage asks the controller to show another item.
type SelectItemMessage struct {
	Type   string `json:"type"`
	ItemID string `json:"itemId"`
}

func (SelectItemMessage) viewMessage() {}

// OpenFile builds an OpenFileMessage.
func OpenFile(path string) OpenFileMessage {
	return OpenFileMessage{Type: TypeOpenFile, FilePath: path}
}

// SelectItem builds a SelectItemMessage.
func SelectItem(id string) SelectItemMessage {
	return SelectItemMessage{Type: TypeSelectItem, ItemID: id}
}

// DecodeViewMessage decodes a JSON message sent by the view.
func DecodeViewMessage(data []byte) (ViewMessage, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("decoding view message: %w", err)
	}

	switch head.Type {
	case TypeOpenFile:
		var m OpenFileMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", head.Type, err)
		}
		return m, nil
	case TypeSelectItem:
		var m SelectItemMessage
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", head.Type, err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, head.Type)
	}
}
