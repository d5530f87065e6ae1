package store

// Via records which path delivered an entry.
type Via string

const (
	ViaDirect Via = "direct"
	ViaDrain  Via = "drain"
)

// Delivery is one row that reached the spreadsheet.
type Delivery struct {
	ID          int64
	EntryID     string
	Text        string
	Timestamp   string
	Via         Via
	Sheet       string
	DeliveredAt int64 // unix millis
}

// Upload is one file stored in Drive.
type Upload struct {
	ID         int64
	FileName   string
	URL        string
	UploadedAt int64 // unix millis
}
