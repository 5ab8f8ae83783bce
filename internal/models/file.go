package models

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Category is the media class of an attachment.
type Category string

const (
	CategoryAudio Category = "audio"
	CategoryVideo Category = "video"
	CategoryText  Category = "text"
)

// Categories lists every category in the order detach searches them.
var Categories = []Category{CategoryAudio, CategoryVideo, CategoryText}

// SentinelURL marks an attachment whose content was not retained.
const SentinelURL = "#"

var extensionCategories = map[string]Category{
	"mp3":  CategoryAudio,
	"wav":  CategoryAudio,
	"ogg":  CategoryAudio,
	"m4a":  CategoryAudio,
	"aac":  CategoryAudio,
	"mp4":  CategoryVideo,
	"webm": CategoryVideo,
	"mov":  CategoryVideo,
	"avi":  CategoryVideo,
}

// Classify derives the category of filename from its lowercased extension.
// Every name maps to some category; unknown or missing extensions are text.
func Classify(filename string) Category {
	ext := filename
	if i := strings.LastIndex(filename, "."); i >= 0 {
		ext = filename[i+1:]
	}
	if c, ok := extensionCategories[strings.ToLower(ext)]; ok {
		return c
	}
	return CategoryText
}

// FileAttachment is one uploaded artifact. It is immutable after creation.
type FileAttachment struct {
	FileID     string    `json:"fileId"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	URL        string    `json:"url"`
	Type       Category  `json:"type"`
	UploadedAt time.Time `json:"uploadedAt,omitzero"`
}

// Retained reports whether the attachment carries inline content.
func (f FileAttachment) Retained() bool {
	return f.URL != "" && f.URL != SentinelURL
}

// FileDescriptor describes an upload: the caller-reported name and size and
// a way to read the content.
type FileDescriptor struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// FileDescriptorFromPath describes the file at path on the local disk.
func FileDescriptorFromPath(path string) (FileDescriptor, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return FileDescriptor{}, err
	}
	return FileDescriptor{
		Name: filepath.Base(path),
		Size: fi.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}
