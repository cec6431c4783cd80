package inmemdb

import (
	"context"
	"sort"

	"github.com/campusops/acerp/core/hostel"
	"github.com/campusops/acerp/core/library"
	"github.com/campusops/acerp/core/notification"
	"github.com/campusops/acerp/core/timetable"
)

type LibraryRepository struct {
	db *DB
}

var _ library.Repository = (*LibraryRepository)(nil)

func NewLibraryRepository(db *DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

func (repo *LibraryRepository) CreateBook(ctx context.Context, b library.Book) (library.Book, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	b.ID = repo.db.nextID()
	repo.db.books[b.ID] = &b
	return b, nil
}

func (repo *LibraryRepository) QueryAllBooks(ctx context.Context) ([]library.Book, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	books := make([]library.Book, 0, len(repo.db.books))
	for _, b := range repo.db.books {
		books = append(books, *b)
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Title < books[j].Title })
	return books, nil
}

func (repo *LibraryRepository) GetBookByID(ctx context.Context, id int64) (library.Book, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if b, ok := repo.db.books[id]; ok {
		return *b, nil
	}
	return library.Book{}, library.ErrBookNotFound
}

func (repo *LibraryRepository) UpdateBook(ctx context.Context, b library.Book) (library.Book, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.books[b.ID]; !ok {
		return library.Book{}, library.ErrBookNotFound
	}
	repo.db.books[b.ID] = &b
	return b, nil
}

func (repo *LibraryRepository) DeleteBook(ctx context.Context, id int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.books[id]; !ok {
		return library.ErrBookNotFound
	}
	delete(repo.db.books, id)
	return nil
}

type HostelRepository struct {
	db *DB
}

var _ hostel.Repository = (*HostelRepository)(nil)

func NewHostelRepository(db *DB) *HostelRepository {
	return &HostelRepository{db: db}
}

func (repo *HostelRepository) CreateRoom(ctx context.Context, r hostel.Room) (hostel.Room, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	r.ID = repo.db.nextID()
	repo.db.rooms[r.ID] = &r
	return r, nil
}

func (repo *HostelRepository) QueryAllRooms(ctx context.Context) ([]hostel.Room, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	rooms := make([]hostel.Room, 0, len(repo.db.rooms))
	for _, r := range repo.db.rooms {
		rooms = append(rooms, *r)
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].RoomNumber < rooms[j].RoomNumber })
	return rooms, nil
}

func (repo *HostelRepository) GetRoomByID(ctx context.Context, id int64) (hostel.Room, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if r, ok := repo.db.rooms[id]; ok {
		return *r, nil
	}
	return hostel.Room{}, hostel.ErrRoomNotFound
}

func (repo *HostelRepository) UpdateRoom(ctx context.Context, r hostel.Room) (hostel.Room, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rooms[r.ID]; !ok {
		return hostel.Room{}, hostel.ErrRoomNotFound
	}
	repo.db.rooms[r.ID] = &r
	return r, nil
}

func (repo *HostelRepository) DeleteRoom(ctx context.Context, id int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.rooms[id]; !ok {
		return hostel.ErrRoomNotFound
	}
	delete(repo.db.rooms, id)
	return nil
}

type TimetableRepository struct {
	db *DB
}

var _ timetable.Repository = (*TimetableRepository)(nil)

func NewTimetableRepository(db *DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

func (repo *TimetableRepository) CreateEntry(ctx context.Context, e timetable.Entry) (timetable.Entry, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	e.ID = repo.db.nextID()
	repo.db.timetable[e.ID] = &e
	return e, nil
}

func (repo *TimetableRepository) QueryAllEntries(ctx context.Context) ([]timetable.Entry, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	entries := make([]timetable.Entry, 0, len(repo.db.timetable))
	for _, e := range repo.db.timetable {
		entries = append(entries, *e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Day != entries[j].Day {
			return dayRank(entries[i].Day) < dayRank(entries[j].Day)
		}
		return entries[i].StartTime < entries[j].StartTime
	})
	return entries, nil
}

func (repo *TimetableRepository) DeleteEntry(ctx context.Context, id int64) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.timetable[id]; !ok {
		return timetable.ErrEntryNotFound
	}
	delete(repo.db.timetable, id)
	return nil
}

func dayRank(day string) int {
	days := []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	for i, d := range days {
		if d == day {
			return i
		}
	}
	return len(days)
}

type NotificationRepository struct {
	db *DB
}

var _ notification.Repository = (*NotificationRepository)(nil)

func NewNotificationRepository(db *DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (repo *NotificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	n.ID = repo.db.nextID()
	repo.db.notifications[n.ID] = &n
	return n, nil
}

func (repo *NotificationRepository) NotificationsForAccount(ctx context.Context, accountID int64) ([]notification.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	notifs := make([]notification.Notification, 0)
	for _, n := range repo.db.notifications {
		if n.RecipientID == accountID || n.RecipientID == 0 {
			notifs = append(notifs, *n)
		}
	}
	sort.Slice(notifs, func(i, j int) bool { return notifs[i].ID > notifs[j].ID })
	return notifs, nil
}

func (repo *NotificationRepository) GetNotificationByID(ctx context.Context, id int64) (notification.Notification, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if n, ok := repo.db.notifications[id]; ok {
		return *n, nil
	}
	return notification.Notification{}, notification.ErrNotificationNotFound
}

func (repo *NotificationRepository) UpdateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.notifications[n.ID]; !ok {
		return notification.Notification{}, notification.ErrNotificationNotFound
	}
	repo.db.notifications[n.ID] = &n
	return n, nil
}
