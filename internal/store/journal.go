package store

import "time"

// RecordDelivery stores d. A second delivery of the same entry (a drain
// retry after a crash) is ignored.
func (db *DB) RecordDelivery(d Delivery) error {
	if d.DeliveredAt == 0 {
		d.DeliveredAt = time.Now().UnixMilli()
	}
	_, err := db.Exec(`
		INSERT OR IGNORE INTO deliveries (entry_id, text, timestamp, via, sheet, delivered_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		d.EntryID, d.Text, d.Timestamp, string(d.Via), d.Sheet, d.DeliveredAt)
	return err
}

// RecentDeliveries returns up to limit deliveries, newest first.
func (db *DB) RecentDeliveries(limit int) ([]Delivery, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT id, entry_id, text, timestamp, via, sheet, delivered_at
		FROM deliveries ORDER BY delivered_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Delivery
	for rows.Next() {
		var d Delivery
		var via string
		if err := rows.Scan(&d.ID, &d.EntryID, &d.Text, &d.Timestamp, &via, &d.Sheet, &d.DeliveredAt); err != nil {
			return nil, err
		}
		d.Via = Via(via)
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeliveryCount returns the number of delivered entries.
func (db *DB) DeliveryCount() (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM deliveries`).Scan(&n)
	return n, err
}

// RecordUpload stores a completed upload.
func (db *DB) RecordUpload(u Upload) error {
	if u.UploadedAt == 0 {
		u.UploadedAt = time.Now().UnixMilli()
	}
	_, err := db.Exec(`INSERT INTO uploads (file_name, url, uploaded_at) VALUES (?, ?, ?)`,
		u.FileName, u.URL, u.UploadedAt)
	return err
}

// RecentUploads returns up to limit uploads, newest first.
func (db *DB) RecentUploads(limit int) ([]Upload, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`
		SELECT id, file_name, url, uploaded_at
		FROM uploads ORDER BY uploaded_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Upload
	for rows.Next() {
		var u Upload
		if err := rows.Scan(&u.ID, &u.FileName, &u.URL, &u.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
