package editor

import (
	"errors"
	"fmt"
	"time"

	"linkpage/internal/models"
)

type OpName string

const (
	OpAdd         OpName = "add"
	OpRemove      OpName = "remove"
	OpMoveUp      OpName = "move_up"
	OpMoveDown    OpName = "move_down"
	OpNoteTouch   OpName = "note_touch"
	OpNoteClear   OpName = "note_clear"
	OpSelectVideo OpName = "select_video"
)

type ListName string

const (
	ListLinks     ListName = "links"
	ListResources ListName = "resources"
	ListGallery   ListName = "gallery"
)

var ErrUnknownOperation = errors.New("unknown editor operation")

// Operation is a single edit requested by the dashboard.
type Operation struct {
	Op    OpName     `json:"op"`
	List  ListName   `json:"list,omitempty"`
	ID    string     `json:"id,omitempty"`
	Index int        `json:"index,omitempty"`
	Video *VideoPick `json:"video,omitempty"`
}

// Apply runs op against doc and returns the edited copy.
func Apply(doc models.ProfileDocument, op Operation, now time.Time) (models.ProfileDocument, error) {
	switch op.Op {
	case OpNoteTouch:
		return TouchNote(doc, now), nil
	case OpNoteClear:
		return ClearNote(doc), nil
	case OpSelectVideo:
		if op.Video == nil || op.Video.VideoID == "" {
			return doc, fmt.Errorf("%w: video is required", ErrUnknownOperation)
		}
		return SelectVideo(doc, *op.Video), nil
	case OpAdd:
		return applyAdd(doc, op.List, now)
	case OpRemove:
		return applyRemove(doc, op.List, op.ID)
	case OpMoveUp, OpMoveDown:
		return applyMove(doc, op)
	}
	return doc, fmt.Errorf("%w: %q", ErrUnknownOperation, op.Op)
}

func applyAdd(doc models.ProfileDocument, list ListName, now time.Time) (models.ProfileDocument, error) {
	switch list {
	case ListLinks:
		return AddLink(doc, now), nil
	case ListResources:
		return AddResource(doc, now), nil
	}
	return doc, fmt.Errorf("%w: cannot add to %q", ErrUnknownOperation, list)
}

func applyRemove(doc models.ProfileDocument, list ListName, id string) (models.ProfileDocument, error) {
	switch list {
	case ListLinks:
		return RemoveLink(doc, id), nil
	case ListResources:
		return RemoveResource(doc, id), nil
	case ListGallery:
		return RemoveGalleryItem(doc, id), nil
	}
	return doc, fmt.Errorf("%w: unknown list %q", ErrUnknownOperation, list)
}

// applyMove resolves the item by id when given, otherwise by index.
func applyMove(doc models.ProfileDocument, op Operation) (models.ProfileDocument, error) {
	index := op.Index
	up := op.Op == OpMoveUp

	switch op.List {
	case ListLinks:
		if op.ID != "" {
			index = indexOf(doc.Links, linkID(op.ID))
		}
		if up {
			return MoveLinkUp(doc, index), nil
		}
		return MoveLinkDown(doc, index), nil
	case ListResources:
		if op.ID != "" {
			index = indexOf(doc.Resources, resourceID(op.ID))
		}
		if up {
			return MoveResourceUp(doc, index), nil
		}
		return MoveResourceDown(doc, index), nil
	case ListGallery:
		if op.ID != "" {
			index = indexOf(doc.Gallery, galleryID(op.ID))
		}
		if up {
			return MoveGalleryItemUp(doc, index), nil
		}
		return MoveGalleryItemDown(doc, index), nil
	}
	return doc, fmt.Errorf("%w: unknown list %q", ErrUnknownOperation, op.List)
}
