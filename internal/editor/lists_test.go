package editor

import (
	"testing"
	"time"

	"linkpage/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func sampleDocument() models.ProfileDocument {
	doc := models.DefaultDocument()
	doc.Links = []models.Link{
		{ID: "a", Name: "GitHub", URL: "https://github.com", Icon: models.SymbolicIcon("github")},
		{ID: "b", Name: "Blog", URL: "https://blog.example", Icon: models.NoIcon()},
		{ID: "c", Name: "Shop", URL: "https://shop.example", Icon: models.NoIcon()},
	}
	doc.Resources = []models.Resource{
		{ID: "r1", Title: "Slides", URL: "/slides", Type: models.ResourceDoc},
		{ID: "r2", Title: "Photos", URL: "/photos", Type: models.ResourceGallery},
	}
	doc.Gallery = []models.GalleryItem{
		{ID: "g1", Type: models.MediaImage, URL: "/uploads/one.png"},
		{ID: "g2", Type: models.MediaVideo, URL: "/uploads/two.mp4"},
	}
	return doc
}

func linkIDs(doc models.ProfileDocument) []string {
	ids := make([]string, 0, len(doc.Links))
	for _, l := range doc.Links {
		ids = append(ids, l.ID)
	}
	return ids
}

func TestAddLink(t *testing.T) {
	doc := sampleDocument()

	updated := AddLink(doc, fixedNow)

	require.Len(t, updated.Links, 4)
	added := updated.Links[3]
	assert.Equal(t, "1714564800000", added.ID)
	assert.Equal(t, NewLinkName, added.Name)
	assert.Equal(t, NewLinkURL, added.URL)
	assert.Equal(t, models.IconNone, added.Icon.Kind)
	assert.Len(t, doc.Links, 3, "input must not change")
}

func TestAddLink_UniqueIDsWithinSameMillisecond(t *testing.T) {
	doc := models.DefaultDocument()
	doc = AddLink(doc, fixedNow)
	doc = AddLink(doc, fixedNow)
	doc = AddLink(doc, fixedNow)

	assert.Equal(t, []string{"1714564800000", "1714564800001", "1714564800002"}, linkIDs(doc))
	assert.NoError(t, doc.Validate())
}

func TestMoveLink(t *testing.T) {
	tests := []struct {
		name     string
		move     func(models.ProfileDocument) models.ProfileDocument
		expected []string
	}{
		{"up from middle", func(d models.ProfileDocument) models.ProfileDocument { return MoveLinkUp(d, 1) }, []string{"b", "a", "c"}},
		{"down from middle", func(d models.ProfileDocument) models.ProfileDocument { return MoveLinkDown(d, 1) }, []string{"a", "c", "b"}},
		{"up at top is no-op", func(d models.ProfileDocument) models.ProfileDocument { return MoveLinkUp(d, 0) }, []string{"a", "b", "c"}},
		{"down at bottom is no-op", func(d models.ProfileDocument) models.ProfileDocument { return MoveLinkDown(d, 2) }, []string{"a", "b", "c"}},
		{"out of range is no-op", func(d models.ProfileDocument) models.ProfileDocument { return MoveLinkDown(d, 9) }, []string{"a", "b", "c"}},
		{"negative is no-op", func(d models.ProfileDocument) models.ProfileDocument { return MoveLinkUp(d, -1) }, []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sampleDocument()
			assert.Equal(t, tt.expected, linkIDs(tt.move(doc)))
			assert.Equal(t, []string{"a", "b", "c"}, linkIDs(doc))
		})
	}
}

func TestMoveLink_UpThenDownRestoresOrder(t *testing.T) {
	doc := sampleDocument()
	for i := 1; i < len(doc.Links); i++ {
		restored := MoveLinkDown(MoveLinkUp(doc, i), i-1)
		assert.Equal(t, linkIDs(doc), linkIDs(restored))
	}
}

func TestUpdateAndRemoveLink(t *testing.T) {
	doc := sampleDocument()

	updated := UpdateLink(doc, models.Link{ID: "b", Name: "Writing", URL: "https://w.example"})
	assert.Equal(t, "Writing", updated.Links[1].Name)
	assert.Equal(t, "Blog", doc.Links[1].Name)

	unchanged := UpdateLink(doc, models.Link{ID: "zzz", Name: "Nope"})
	assert.Equal(t, doc.Links, unchanged.Links)

	removed := RemoveLink(doc, "a")
	assert.Equal(t, []string{"b", "c"}, linkIDs(removed))
	assert.Len(t, doc.Links, 3)

	assert.Len(t, RemoveLink(doc, "missing").Links, 3)
}

func TestResources(t *testing.T) {
	doc := sampleDocument()

	added := AddResource(doc, fixedNow)
	require.Len(t, added.Resources, 3)
	assert.Equal(t, NewResourceTitle, added.Resources[2].Title)
	assert.Equal(t, NewResourceURL, added.Resources[2].URL)
	assert.Equal(t, models.ResourceDoc, added.Resources[2].Type)

	moved := MoveResourceDown(doc, 0)
	assert.Equal(t, "r2", moved.Resources[0].ID)
	assert.Equal(t, "r1", doc.Resources[0].ID)

	assert.Equal(t, doc.Resources, MoveResourceUp(doc, 0).Resources)

	removed := RemoveResource(doc, "r1")
	require.Len(t, removed.Resources, 1)
	assert.Equal(t, "r2", removed.Resources[0].ID)

	updated := UpdateResource(doc, models.Resource{ID: "r2", Title: "Album", Type: models.ResourceGallery})
	assert.Equal(t, "Album", updated.Resources[1].Title)
}

func TestGallery(t *testing.T) {
	doc := sampleDocument()

	added := AddGalleryItem(doc, "", "/uploads/three.png", fixedNow)
	require.Len(t, added.Gallery, 3)
	assert.Equal(t, models.MediaImage, added.Gallery[2].Type)
	assert.Equal(t, NewUploadCaption, added.Gallery[2].Caption)

	video := AddGalleryItem(doc, models.MediaVideo, "/uploads/clip.mp4", fixedNow)
	assert.Equal(t, models.MediaVideo, video.Gallery[2].Type)

	moved := MoveGalleryItemUp(doc, 1)
	assert.Equal(t, "g2", moved.Gallery[0].ID)
	assert.Equal(t, doc.Gallery, MoveGalleryItemDown(doc, 1).Gallery)

	removed := RemoveGalleryItem(doc, "g2")
	require.Len(t, removed.Gallery, 1)

	updated := UpdateGalleryItem(doc, models.GalleryItem{ID: "g1", Type: models.MediaImage, Caption: "Sunset"})
	assert.Equal(t, "Sunset", updated.Gallery[0].Caption)
	assert.Empty(t, doc.Gallery[0].Caption)
}

func TestEditsDoNotAliasInput(t *testing.T) {
	doc := sampleDocument()
	updated := UpdateLink(doc, models.Link{ID: "a", Name: "Changed"})
	updated.Links[2].Name = "Mutated"

	assert.Equal(t, "GitHub", doc.Links[0].Name)
	assert.Equal(t, "Shop", doc.Links[2].Name)
}
