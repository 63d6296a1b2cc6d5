package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ayah is the verse payload a user bookmarks. The backend stores it as
// received and only relies on ID.
type Ayah struct {
	ID              string `json:"id"`
	VerseKey        string `json:"verse_key"`
	Surah           int    `json:"surah"`
	NumberInSurah   int    `json:"numberInSurah"`
	Arabic          string `json:"arabic,omitempty"`
	Translation     string `json:"translation,omitempty"`
	TranslationUrdu string `json:"translation_urdu,omitempty"`
	Theme           string `json:"theme,omitempty"`
	Tafsir          string `json:"tafsir,omitempty"`
}

// Favorite links a user to a bookmarked verse.
type Favorite struct {
	ID        uuid.UUID `json:"_id"`
	UserID    uuid.UUID `json:"userId"`
	Ayah      Ayah      `json:"ayah"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
