package session

import (
	"notebook/internal/document"
)

// UploadStatus is the lifecycle state of the selected document.
type UploadStatus int

const (
	UploadIdle UploadStatus = iota
	UploadUploading
	UploadUploaded
	UploadError
)

// String returns the display name for each status
func (s UploadStatus) String() string {
	names := []string{"idle", "uploading", "uploaded", "error"}
	if int(s) >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// UploadFailedMessage is shown when an upload fails without a usable error text.
const UploadFailedMessage = "Upload failed. Please try again."

// Ticket identifies one upload attempt. Results carrying a ticket from an
// earlier selection are disregarded.
type Ticket struct {
	generation uint64
	doc        document.Document
}

// Document returns the file the attempt is uploading.
func (t Ticket) Document() document.Document {
	return t.doc
}

// Intake tracks the selected document and its upload status.
//
//	Select: any -> idle
//	Begin:  idle|uploaded|error -> uploading
//	Complete(nil): uploading -> uploaded
//	Complete(err): uploading -> error
type Intake struct {
	doc        *document.Document
	status     UploadStatus
	message    string
	generation uint64
}

// NewIntake returns an intake with nothing selected.
func NewIntake() *Intake {
	return &Intake{}
}

// Select records a newly chosen file. Status resets to idle regardless of
// the previous state; any in-flight upload result for the old file is
// disregarded when it arrives.
func (in *Intake) Select(doc document.Document) {
	d := doc
	in.doc = &d
	in.status = UploadIdle
	in.message = ""
	in.generation++
}

// Document returns the selected file, if any.
func (in *Intake) Document() (document.Document, bool) {
	if in.doc == nil {
		return document.Document{}, false
	}
	return *in.doc, true
}

// Status returns the current upload status.
func (in *Intake) Status() UploadStatus {
	return in.status
}

// Message returns the error text for UploadError, empty otherwise.
func (in *Intake) Message() string {
	return in.message
}

// CanUpload reports whether the upload action is enabled.
func (in *Intake) CanUpload() bool {
	return in.doc != nil && in.status != UploadUploading
}

// Ready reports whether the document has been uploaded.
func (in *Intake) Ready() bool {
	return in.status == UploadUploaded
}

// Begin moves to uploading and returns the ticket for the attempt.
func (in *Intake) Begin() (Ticket, bool) {
	if !in.CanUpload() {
		return Ticket{}, false
	}
	in.status = UploadUploading
	in.message = ""
	return Ticket{generation: in.generation, doc: *in.doc}, true
}

// Complete applies the outcome of an upload attempt. It returns false when the
// ticket belongs to an earlier selection and the result was dropped.
func (in *Intake) Complete(t Ticket, err error) bool {
	if t.generation != in.generation || in.doc == nil {
		return false
	}
	if err == nil {
		in.status = UploadUploaded
		in.message = ""
		return true
	}
	in.status = UploadError
	in.message = err.Error()
	if in.message == "" {
		in.message = UploadFailedMessage
	}
	return true
}
