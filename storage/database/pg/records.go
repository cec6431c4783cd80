package pg

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/campusops/acerp/core/hostel"
	"github.com/campusops/acerp/core/library"
	"github.com/campusops/acerp/core/notification"
	"github.com/campusops/acerp/core/timetable"
)

// Campus-record repositories: library books, hostel rooms, timetable entries
// and notifications. Flat CRUD, no joins.

type LibraryRepository struct {
	db *sqlx.DB
}

var _ library.Repository = (*LibraryRepository)(nil)

func NewLibraryRepository(db *sqlx.DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

type bookRow struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	Author    string    `db:"author"`
	ISBN      string    `db:"isbn"`
	Category  string    `db:"category"`
	Quantity  int       `db:"quantity"`
	Available int       `db:"available"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r bookRow) toBook() library.Book {
	return library.Book(r)
}

const bookCols = `id, title, author, isbn, category, quantity, available, created_at, updated_at`

func (repo *LibraryRepository) CreateBook(ctx context.Context, b library.Book) (library.Book, error) {
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO book (title, author, isbn, category, quantity, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		b.Title, b.Author, b.ISBN, b.Category, b.Quantity, b.Available, b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)
	if err != nil {
		return library.Book{}, errors.Wrap(err, "inserting book")
	}
	return b, nil
}

func (repo *LibraryRepository) QueryAllBooks(ctx context.Context) ([]library.Book, error) {
	var rows []bookRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+bookCols+` FROM book ORDER BY title`); err != nil {
		return nil, errors.Wrap(err, "querying books")
	}
	books := make([]library.Book, 0, len(rows))
	for _, r := range rows {
		books = append(books, r.toBook())
	}
	return books, nil
}

func (repo *LibraryRepository) GetBookByID(ctx context.Context, id int64) (library.Book, error) {
	var row bookRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+bookCols+` FROM book WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return library.Book{}, library.ErrBookNotFound
		}
		return library.Book{}, errors.Wrap(err, "querying book")
	}
	return row.toBook(), nil
}

func (repo *LibraryRepository) UpdateBook(ctx context.Context, b library.Book) (library.Book, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE book
		SET title = $1, author = $2, category = $3, quantity = $4, available = $5, updated_at = $6
		WHERE id = $7`,
		b.Title, b.Author, b.Category, b.Quantity, b.Available, b.UpdatedAt, b.ID,
	)
	if err != nil {
		return library.Book{}, errors.Wrap(err, "updating book")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return library.Book{}, library.ErrBookNotFound
	}
	return b, nil
}

func (repo *LibraryRepository) DeleteBook(ctx context.Context, id int64) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM book WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting book")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return library.ErrBookNotFound
	}
	return nil
}

type HostelRepository struct {
	db *sqlx.DB
}

var _ hostel.Repository = (*HostelRepository)(nil)

func NewHostelRepository(db *sqlx.DB) *HostelRepository {
	return &HostelRepository{db: db}
}

type roomRow struct {
	ID         int64     `db:"id"`
	Name       string    `db:"name"`
	RoomNumber string    `db:"room_number"`
	Capacity   int       `db:"capacity"`
	Occupied   int       `db:"occupied"`
	Type       string    `db:"type"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r roomRow) toRoom() hostel.Room {
	return hostel.Room(r)
}

const roomCols = `id, name, room_number, capacity, occupied, type, created_at, updated_at`

func (repo *HostelRepository) CreateRoom(ctx context.Context, r hostel.Room) (hostel.Room, error) {
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO hostel_room (name, room_number, capacity, occupied, type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`,
		r.Name, r.RoomNumber, r.Capacity, r.Occupied, r.Type, r.CreatedAt, r.UpdatedAt,
	).Scan(&r.ID)
	if err != nil {
		return hostel.Room{}, errors.Wrap(err, "inserting room")
	}
	return r, nil
}

func (repo *HostelRepository) QueryAllRooms(ctx context.Context) ([]hostel.Room, error) {
	var rows []roomRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+roomCols+` FROM hostel_room ORDER BY room_number`); err != nil {
		return nil, errors.Wrap(err, "querying rooms")
	}
	rooms := make([]hostel.Room, 0, len(rows))
	for _, r := range rows {
		rooms = append(rooms, r.toRoom())
	}
	return rooms, nil
}

func (repo *HostelRepository) GetRoomByID(ctx context.Context, id int64) (hostel.Room, error) {
	var row roomRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+roomCols+` FROM hostel_room WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return hostel.Room{}, hostel.ErrRoomNotFound
		}
		return hostel.Room{}, errors.Wrap(err, "querying room")
	}
	return row.toRoom(), nil
}

func (repo *HostelRepository) UpdateRoom(ctx context.Context, r hostel.Room) (hostel.Room, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE hostel_room
		SET name = $1, room_number = $2, capacity = $3, occupied = $4, type = $5, updated_at = $6
		WHERE id = $7`,
		r.Name, r.RoomNumber, r.Capacity, r.Occupied, r.Type, r.UpdatedAt, r.ID,
	)
	if err != nil {
		return hostel.Room{}, errors.Wrap(err, "updating room")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hostel.Room{}, hostel.ErrRoomNotFound
	}
	return r, nil
}

func (repo *HostelRepository) DeleteRoom(ctx context.Context, id int64) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM hostel_room WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting room")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hostel.ErrRoomNotFound
	}
	return nil
}

type TimetableRepository struct {
	db *sqlx.DB
}

var _ timetable.Repository = (*TimetableRepository)(nil)

func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

type timetableRow struct {
	ID           int64     `db:"id"`
	Day          string    `db:"day"`
	StartTime    string    `db:"start_time"`
	EndTime      string    `db:"end_time"`
	Subject      string    `db:"subject"`
	ClassOrBatch string    `db:"class_or_batch"`
	Teacher      string    `db:"teacher"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r timetableRow) toEntry() timetable.Entry {
	return timetable.Entry(r)
}

func (repo *TimetableRepository) CreateEntry(ctx context.Context, e timetable.Entry) (timetable.Entry, error) {
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO timetable_entry (day, start_time, end_time, subject, class_or_batch, teacher, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		e.Day, e.StartTime, e.EndTime, e.Subject, e.ClassOrBatch, e.Teacher, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
	if err != nil {
		return timetable.Entry{}, errors.Wrap(err, "inserting timetable entry")
	}
	return e, nil
}

func (repo *TimetableRepository) QueryAllEntries(ctx context.Context) ([]timetable.Entry, error) {
	var rows []timetableRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT id, day, start_time, end_time, subject, class_or_batch, teacher, created_at, updated_at
		FROM timetable_entry
		ORDER BY array_position(ARRAY['Monday','Tuesday','Wednesday','Thursday','Friday','Saturday','Sunday'], day), start_time`)
	if err != nil {
		return nil, errors.Wrap(err, "querying timetable entries")
	}
	entries := make([]timetable.Entry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, r.toEntry())
	}
	return entries, nil
}

func (repo *TimetableRepository) DeleteEntry(ctx context.Context, id int64) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM timetable_entry WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting timetable entry")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return timetable.ErrEntryNotFound
	}
	return nil
}

type NotificationRepository struct {
	db *sqlx.DB
}

var _ notification.Repository = (*NotificationRepository)(nil)

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

type notificationRow struct {
	ID          int64         `db:"id"`
	RecipientID sql.NullInt64 `db:"recipient_id"`
	Title       string        `db:"title"`
	Message     string        `db:"message"`
	Read        bool          `db:"read"`
	Type        string        `db:"type"`
	CreatedAt   time.Time     `db:"created_at"`
}

func (r notificationRow) toNotification() notification.Notification {
	return notification.Notification{
		ID:          r.ID,
		RecipientID: r.RecipientID.Int64,
		Title:       r.Title,
		Message:     r.Message,
		Read:        r.Read,
		Type:        r.Type,
		CreatedAt:   r.CreatedAt,
	}
}

const notificationCols = `id, recipient_id, title, message, read, type, created_at`

func (repo *NotificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	err := repo.db.QueryRowContext(ctx, `
		INSERT INTO notification (recipient_id, title, message, read, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		nullInt64(n.RecipientID), n.Title, n.Message, n.Read, n.Type, n.CreatedAt,
	).Scan(&n.ID)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "inserting notification")
	}
	return n, nil
}

// NotificationsForAccount includes broadcasts, stored with a NULL recipient.
func (repo *NotificationRepository) NotificationsForAccount(ctx context.Context, accountID int64) ([]notification.Notification, error) {
	var rows []notificationRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT `+notificationCols+` FROM notification WHERE recipient_id = $1 OR recipient_id IS NULL ORDER BY created_at DESC, id DESC`,
		accountID)
	if err != nil {
		return nil, errors.Wrap(err, "querying notifications")
	}
	notifs := make([]notification.Notification, 0, len(rows))
	for _, r := range rows {
		notifs = append(notifs, r.toNotification())
	}
	return notifs, nil
}

func (repo *NotificationRepository) GetNotificationByID(ctx context.Context, id int64) (notification.Notification, error) {
	var row notificationRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+notificationCols+` FROM notification WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return notification.Notification{}, notification.ErrNotificationNotFound
		}
		return notification.Notification{}, errors.Wrap(err, "querying notification")
	}
	return row.toNotification(), nil
}

func (repo *NotificationRepository) UpdateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE notification SET read = $1 WHERE id = $2`, n.Read, n.ID)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "updating notification")
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return notification.Notification{}, notification.ErrNotificationNotFound
	}
	return n, nil
}
