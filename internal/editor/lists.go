package editor

import (
	"time"

	"linkpage/internal/models"
)

// moveBy swaps the item at index with its neighbour delta steps away. Out of
// range moves return the list unchanged.
func moveBy[T any](items []T, index, delta int) []T {
	target := index + delta
	if index < 0 || index >= len(items) || target < 0 || target >= len(items) {
		return items
	}
	moved := append([]T(nil), items...)
	moved[index], moved[target] = moved[target], moved[index]
	return moved
}

func removeWhere[T any](items []T, match func(T) bool) []T {
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if !match(item) {
			kept = append(kept, item)
		}
	}
	return kept
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}

func linkID(id string) func(models.Link) bool {
	return func(l models.Link) bool { return l.ID == id }
}

func resourceID(id string) func(models.Resource) bool {
	return func(r models.Resource) bool { return r.ID == id }
}

func galleryID(id string) func(models.GalleryItem) bool {
	return func(g models.GalleryItem) bool { return g.ID == id }
}

func hasLink(doc models.ProfileDocument) func(string) bool {
	return func(id string) bool { return indexOf(doc.Links, linkID(id)) >= 0 }
}

func hasResource(doc models.ProfileDocument) func(string) bool {
	return func(id string) bool { return indexOf(doc.Resources, resourceID(id)) >= 0 }
}

func hasGalleryItem(doc models.ProfileDocument) func(string) bool {
	return func(id string) bool { return indexOf(doc.Gallery, galleryID(id)) >= 0 }
}

// Links

func AddLink(doc models.ProfileDocument, now time.Time) models.ProfileDocument {
	doc = Clone(doc)
	doc.Links = append(doc.Links, models.Link{
		ID:   NewID(now, hasLink(doc)),
		Name: NewLinkName,
		URL:  NewLinkURL,
		Icon: models.NoIcon(),
	})
	return doc
}

// UpdateLink replaces the link with the same id. Unknown ids leave the document as is.
func UpdateLink(doc models.ProfileDocument, link models.Link) models.ProfileDocument {
	doc = Clone(doc)
	if i := indexOf(doc.Links, linkID(link.ID)); i >= 0 {
		doc.Links[i] = link
	}
	return doc
}

func RemoveLink(doc models.ProfileDocument, id string) models.ProfileDocument {
	doc = Clone(doc)
	doc.Links = removeWhere(doc.Links, linkID(id))
	return doc
}

func MoveLinkUp(doc models.ProfileDocument, index int) models.ProfileDocument {
	doc = Clone(doc)
	doc.Links = moveBy(doc.Links, index, -1)
	return doc
}

func MoveLinkDown(doc models.ProfileDocument, index int) models.ProfileDocument {
	doc = Clone(doc)
	doc.Links = moveBy(doc.Links, index, 1)
	return doc
}

// Resources

func AddResource(doc models.ProfileDocument, now time.Time) models.ProfileDocument {
	doc = Clone(doc)
	doc.Resources = append(doc.Resources, models.Resource{
		ID:    NewID(now, hasResource(doc)),
		Title: NewResourceTitle,
		URL:   NewResourceURL,
		Type:  models.ResourceDoc,
	})
	return doc
}

func UpdateResource(doc models.ProfileDocument, resource models.Resource) models.ProfileDocument {
	doc = Clone(doc)
	if i := indexOf(doc.Resources, resourceID(resource.ID)); i >= 0 {
		doc.Resources[i] = resource
	}
	return doc
}

func RemoveResource(doc models.ProfileDocument, id string) models.ProfileDocument {
	doc = Clone(doc)
	doc.Resources = removeWhere(doc.Resources, resourceID(id))
	return doc
}

func MoveResourceUp(doc models.ProfileDocument, index int) models.ProfileDocument {
	doc = Clone(doc)
	doc.Resources = moveBy(doc.Resources, index, -1)
	return doc
}

func MoveResourceDown(doc models.ProfileDocument, index int) models.ProfileDocument {
	doc = Clone(doc)
	doc.Resources = moveBy(doc.Resources, index, 1)
	return doc
}

// Gallery

func AddGalleryItem(
	doc models.ProfileDocument,
	mediaType models.MediaType,
	url string,
	now time.Time,
) models.ProfileDocument {
	if mediaType != models.MediaVideo {
		mediaType = models.MediaImage
	}
	doc = Clone(doc)
	doc.Gallery = append(doc.Gallery, models.GalleryItem{
		ID:      NewID(now, hasGalleryItem(doc)),
		Type:    mediaType,
		URL:     url,
		Caption: NewUploadCaption,
	})
	return doc
}

func UpdateGalleryItem(doc models.ProfileDocument, item models.GalleryItem) models.ProfileDocument {
	doc = Clone(doc)
	if i := indexOf(doc.Gallery, galleryID(item.ID)); i >= 0 {
		doc.Gallery[i] = item
	}
	return doc
}

func RemoveGalleryItem(doc models.ProfileDocument, id string) models.ProfileDocument {
	doc = Clone(doc)
	doc.Gallery = removeWhere(doc.Gallery, galleryID(id))
	return doc
}

func MoveGalleryItemUp(doc models.ProfileDocument, index int) models.ProfileDocument {
	doc = Clone(doc)
	doc.Gallery = moveBy(doc.Gallery, index, -1)
	return doc
}

func MoveGalleryItemDown(doc models.ProfileDocument, index int) models.ProfileDocument {
	doc = Clone(doc)
	doc.Gallery = moveBy(doc.Gallery, index, 1)
	return doc
}
