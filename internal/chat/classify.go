package chat

import "strings"

// Attachment classification is OR-combined: a content type match or a
// filename extension match is enough. Clients routinely omit or mis-report
// the content type, extensions cover for them.
//
// MessageTypeOf and NotificationTypeOf are deliberately two separate rule
// sets, not one. Notifications know VIDEO but messages do not, messages know
// DOCUMENT but notifications do not. Unifying them changes behavior.

func isImage(contentType, filename string) bool {
	return contentType == "image/jpeg" || contentType == "image/png" ||
		strings.HasSuffix(filename, ".jpg") || strings.HasSuffix(filename, ".jpeg") || strings.HasSuffix(filename, ".png")
}

func isAudio(contentType, filename string) bool {
	return contentType == "audio/mpeg" || contentType == "audio/wav" ||
		contentType == "audio/aac" || contentType == "audio/ogg" ||
		strings.HasSuffix(filename, ".mp3") || strings.HasSuffix(filename, ".wav") ||
		strings.HasSuffix(filename, ".aac") || strings.HasSuffix(filename, ".ogg")
}

func isVideo(contentType, filename string) bool {
	return contentType == "video/mp4" || contentType == "video/quicktime" ||
		contentType == "video/x-matroska" ||
		strings.HasSuffix(filename, ".mp4") || strings.HasSuffix(filename, ".mov") ||
		strings.HasSuffix(filename, ".mkv")
}

func isDocument(contentType, filename string) bool {
	return contentType == "application/pdf" || strings.HasSuffix(filename, ".pdf")
}

// MessageTypeOf classifies an attachment into a message kind. The second
// return value is false when nothing matches; the caller decides what to do
// with an unclassifiable attachment. There is no video branch here, so video
// uploads come back unclassified.
// TODO clarify with product whether video uploads should get a message kind
func MessageTypeOf(contentType, filename string) (MessageType, bool) {
	switch {
	case isImage(contentType, filename):
		return TypeImage, true
	case isAudio(contentType, filename):
		return TypeAudio, true
	case isDocument(contentType, filename):
		return TypeDocument, true
	}
	return "", false
}

// NotificationTypeOf classifies an attachment into a notification kind.
// Anything unrecognized, pdf included, falls back to a plain MESSAGE event.
func NotificationTypeOf(contentType, filename string) NotificationType {
	switch {
	case isImage(contentType, filename):
		return NotifyImage
	case isAudio(contentType, filename):
		return NotifyAudio
	case isVideo(contentType, filename):
		return NotifyVideo
	}
	return NotifyMessage
}
