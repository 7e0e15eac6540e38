package seed

import (
	"context"

	"linkpage/internal/database"
	"linkpage/internal/models"
	"linkpage/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
)

func Seed(db database.DB, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	ctx := context.Background()

	version, err := repositories.NewProfileConfigRepository(db).Save(ctx, demoDocument())
	if err != nil {
		return log.Err("failed to seed profile config", err)
	}
	log.Info("Seeded profile config", "version", version)

	subscribers := repositories.NewSubscriberRepository(db)
	for _, email := range []string{"reader@example.com", "listener@example.com"} {
		if _, err := subscribers.Create(ctx, email); err != nil {
			log.Er("failed to seed subscriber", err, "email", email)
		}
	}

	return nil
}

func demoDocument() models.ProfileDocument {
	doc := models.DefaultDocument()

	doc.Profile = models.Profile{
		Handle:         "demo",
		Bio:            "Building things on the internet.",
		ThemeColor:     "#7c3aed",
		Location:       "Chicago",
		WeatherEnabled: true,
		Presence:       models.Presence{Mode: models.PresenceManual},
		Status:         models.ManualStatus{Text: "Shipping", Color: models.ColorGreen},
	}

	doc.Links = []models.Link{
		{ID: "github", Name: "GitHub", URL: "https://github.com/", Icon: models.SymbolicIcon("github")},
		{ID: "youtube", Name: "YouTube", URL: "https://youtube.com/", Icon: models.SymbolicIcon("youtube")},
		{ID: "blog", Name: "Blog", URL: "https://example.com/blog", Icon: models.NoIcon()},
	}

	doc.Resources = []models.Resource{
		{ID: "setup", Title: "Desk setup", URL: "https://example.com/setup", Type: models.ResourceGallery},
		{ID: "cv", Title: "Resume", URL: "https://example.com/cv.pdf", Type: models.ResourceDoc, Meta: "PDF"},
	}

	doc.Gallery = []models.GalleryItem{
		{ID: "g1", Type: models.MediaImage, URL: "https://picsum.photos/seed/one/800/600", Caption: "Morning"},
		{ID: "g2", Type: models.MediaImage, URL: "https://picsum.photos/seed/two/800/600", Caption: "Evening"},
	}

	doc.Music = models.Music{
		Title:          "Demo Track",
		Artist:         "Demo Artist",
		YoutubeVideoID: "dQw4w9WgXcQ",
		SpotifyEnabled: true,
	}

	doc.Widgets = models.Widgets{QuotesEnabled: true, NotesEnabled: true}

	return doc
}
