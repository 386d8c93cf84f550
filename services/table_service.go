package services

import (
	"context"
	"errors"

	"github.com/AlexHayrapetyan/RestoBook/hub"
	"github.com/AlexHayrapetyan/RestoBook/models"
	"github.com/AlexHayrapetyan/RestoBook/utils"
	"gorm.io/gorm"
)

const (
	msgTableNotFound      = "The selected table does not exist."
	msgTableBusy          = "The chosen table is busy."
	msgCapacity           = "Choose a table with sufficient capacity."
	msgConcurrentTableHit = "The table was just updated by someone else, please try again."
)

// TableService -> inventory meja dan cache status Free/Busy
type TableService struct {
	db  *gorm.DB
	hub *hub.Hub
}

func NewTableService(db *gorm.DB, h *hub.Hub) *TableService {
	return &TableService{db: db, hub: h}
}

func (s *TableService) List(ctx context.Context) ([]models.Table, error) {
	var tables []models.Table
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&tables).Error; err != nil {
		return nil, wrap("list tables", err)
	}
	return tables, nil
}

func (s *TableService) Get(ctx context.Context, id uint) (*models.Table, error) {
	return findTable(s.db.WithContext(ctx), id)
}

func (s *TableService) Create(ctx context.Context, capacity int) (*models.Table, error) {
	if capacity <= 0 {
		return nil, invalidInput("capacity", "Capacity must be a positive number of seats.")
	}
	table := models.Table{Capacity: capacity, Status: models.TableFree}
	if err := s.db.WithContext(ctx).Create(&table).Error; err != nil {
		return nil, wrap("create table", err)
	}

	utils.InfoLogger.Infof("New table created: id=%d capacity=%d", table.ID, table.Capacity)
	s.hub.BroadcastTableCreate(table)
	return &table, nil
}

// SetStatus is the staff override of the cached flag.
func (s *TableService) SetStatus(ctx context.Context, id uint, status string) (*models.Table, error) {
	if status != models.TableFree && status != models.TableBusy {
		return nil, invalidInput("status", "Status must be Free or Busy.")
	}

	var table *models.Table
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		t, err := findTable(tx, id)
		if err != nil {
			return err
		}
		if t.Status == status {
			table = t
			return nil
		}
		if err := setTableStatus(tx, t, status); err != nil {
			return err
		}
		table = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.Infof("Table %d status changed to %s", table.ID, table.Status)
	s.hub.BroadcastTableUpdate(*table)
	return table, nil
}

// CheckAvailability is the quick browse check on the stored flag: NotFound
// when absent, Conflict when Busy whatever the party size, Conflict when the
// party is too small for the table. The table is returned unmutated.
func (s *TableService) CheckAvailability(ctx context.Context, tableID uint, partySize int) (*models.Table, error) {
	table, err := findTable(s.db.WithContext(ctx), tableID)
	if err != nil {
		return nil, err
	}
	if table.Status == models.TableBusy {
		return nil, conflict(msgTableBusy)
	}
	if !fitsCapacity(table.Capacity, partySize) {
		return nil, conflict(msgCapacity)
	}
	return table, nil
}

func findTable(db *gorm.DB, id uint) (*models.Table, error) {
	var table models.Table
	if err := db.First(&table, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(msgTableNotFound)
		}
		return nil, wrap("load table", err)
	}
	return &table, nil
}

// setTableStatus writes status with a compare-and-swap on Version.
func setTableStatus(tx *gorm.DB, table *models.Table, status string) error {
	res := tx.Model(&models.Table{}).
		Where("id = ? AND version = ?", table.ID, table.Version).
		Updates(map[string]interface{}{
			"status":  status,
			"version": gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return wrap("update table status", res.Error)
	}
	if res.RowsAffected == 0 {
		return conflict(msgConcurrentTableHit)
	}
	table.Status = status
	table.Version++
	return nil
}

// refreshTableStatus recomputes the cached flag from the ledger: Busy while
// any reservation on the table is not Done.
func refreshTableStatus(tx *gorm.DB, tableID uint) (*models.Table, error) {
	table, err := findTable(tx, tableID)
	if err != nil {
		return nil, err
	}

	var active int64
	if err := tx.Model(&models.Reservation{}).
		Where("table_id = ? AND (status IS NULL OR status <> ?)", tableID, models.ReservationDone).
		Count(&active).Error; err != nil {
		return nil, wrap("count active reservations", err)
	}

	want := models.TableFree
	if active > 0 {
		want = models.TableBusy
	}
	if table.Status == want {
		return table, nil
	}
	if err := setTableStatus(tx, table, want); err != nil {
		return nil, err
	}
	return table, nil
}

// FloorStats is the staff dashboard summary.
type FloorStats struct {
	Free                int64 `json:"free"`
	Busy                int64 `json:"busy"`
	Total               int64 `json:"total"`
	PendingReservations int64 `json:"pending_reservations"`
}

func (s *TableService) Stats(ctx context.Context) (*FloorStats, error) {
	db := s.db.WithContext(ctx)
	var stats FloorStats
	if err := db.Model(&models.Table{}).Where("status = ?", models.TableFree).Count(&stats.Free).Error; err != nil {
		return nil, wrap("count free tables", err)
	}
	if err := db.Model(&models.Table{}).Where("status = ?", models.TableBusy).Count(&stats.Busy).Error; err != nil {
		return nil, wrap("count busy tables", err)
	}
	stats.Total = stats.Free + stats.Busy

	err := db.Model(&models.Reservation{}).
		Where("status IS NULL OR status <> ?", models.ReservationDone).
		Count(&stats.PendingReservations).Error
	if err != nil {
		return nil, wrap("count pending reservations", err)
	}
	return &stats, nil
}
