package migrations

import (
	"context"
	"database/sql"
	"time"

	"github.com/pressly/goose/v3"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

func init() {
	goose.AddMigrationContext(upInit, downInit)
}

// The structs below freeze the schema as of this migration. They are
// deliberately independent of the live model types.

type Item struct {
	ID              int64             `gorm:"type:bigserial;primaryKey"`
	ItemID          string            `gorm:"column:item_id;type:text;uniqueIndex;not null"`
	Name            string            `gorm:"type:text;not null"`
	SerialNumber    string            `gorm:"type:text;uniqueIndex;not null"`
	Quantity        int               `gorm:"not null;default:1"`
	Category        string            `gorm:"type:text"`
	CategoryDetails string            `gorm:"type:text"`
	Image           string            `gorm:"type:text"`
	ScannedCode     string            `gorm:"type:text"`
	Status          string            `gorm:"type:text;default:en_stock"`
	ItemType        string            `gorm:"type:text"`
	Brand           string            `gorm:"type:text"`
	Model           string            `gorm:"type:text"`
	CustomData      datatypes.JSONMap `gorm:"type:jsonb"`
	CreatedAt       time.Time         `gorm:"type:timestamptz;not null"`
	LastUpdated     time.Time         `gorm:"column:last_updated;type:timestamptz;not null;index"`
}

func (Item) TableName() string { return "items" }

type ChangeRecord struct {
	ID               int64     `gorm:"type:bigserial;primaryKey"`
	ItemSerialNumber string    `gorm:"type:text;not null;index"`
	FieldName        string    `gorm:"type:text;not null"`
	OldValue         *string   `gorm:"type:text"`
	NewValue         *string   `gorm:"type:text"`
	ChangedAt        time.Time `gorm:"type:timestamptz;not null;index"`
}

func (ChangeRecord) TableName() string { return "item_history" }

type Notification struct {
	ID               int64     `gorm:"type:bigserial;primaryKey"`
	Message          string    `gorm:"type:text;not null"`
	Type             string    `gorm:"type:text;not null"`
	ItemSerialNumber *string   `gorm:"type:text"`
	CreatedAt        time.Time `gorm:"type:timestamptz;not null;index"`
}

func (Notification) TableName() string { return "notifications" }

type CustomField struct {
	ID           int64          `gorm:"type:bigserial;primaryKey"`
	Name         string         `gorm:"type:text;uniqueIndex;not null"`
	FieldKey     string         `gorm:"type:text;uniqueIndex;not null"`
	FieldType    string         `gorm:"type:text;not null;default:text"`
	Options      datatypes.JSON `gorm:"type:jsonb"`
	Required     bool           `gorm:"not null;default:false"`
	DisplayOrder int            `gorm:"not null;default:0"`
	CreatedAt    time.Time      `gorm:"type:timestamptz;not null"`
}

func (CustomField) TableName() string { return "custom_fields" }

type Category struct {
	ID        int64     `gorm:"type:bigserial;primaryKey"`
	Name      string    `gorm:"type:text;uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null"`
}

func (Category) TableName() string { return "custom_categories" }

type DeletedCategory struct {
	ID        int64     `gorm:"type:bigserial;primaryKey"`
	Name      string    `gorm:"type:text;uniqueIndex;not null"`
	DeletedAt time.Time `gorm:"type:timestamptz;not null"`
}

func (DeletedCategory) TableName() string { return "deleted_categories" }

type Rental struct {
	ID             int64          `gorm:"type:bigserial;primaryKey"`
	RenterName     string         `gorm:"type:text;not null"`
	RenterEmail    string         `gorm:"type:text;not null"`
	RenterPhone    string         `gorm:"type:text;not null"`
	RenterAddress  string         `gorm:"type:text"`
	RentalPrice    float64        `gorm:"not null"`
	RentalDeposit  float64        `gorm:"not null"`
	RentalDuration int            `gorm:"not null"`
	StartDate      string         `gorm:"type:text;not null;index"`
	EndDate        string         `gorm:"type:text;not null;index"`
	Status         string         `gorm:"type:text;not null;default:en_cours;index"`
	ItemsData      datatypes.JSON `gorm:"type:jsonb;not null"`
	Attachments    datatypes.JSON `gorm:"type:jsonb"`
	Notes          string         `gorm:"type:text"`
	CreatedAt      time.Time      `gorm:"type:timestamptz;not null"`
	UpdatedAt      time.Time      `gorm:"type:timestamptz;not null"`
}

func (Rental) TableName() string { return "rentals" }

type RentalStatus struct {
	ID        int64     `gorm:"type:bigserial;primaryKey"`
	Name      string    `gorm:"type:text;uniqueIndex;not null"`
	Color     string    `gorm:"type:text;default:#666"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null"`
}

func (RentalStatus) TableName() string { return "rental_statuses" }

func openTx(tx *sql.Tx) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: tx, PreferSimpleProtocol: true}), &gorm.Config{
		NamingStrategy: schema.NamingStrategy{SingularTable: false},
		Logger:         logger.Default.LogMode(logger.Silent),
	})
}

func upInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := openTx(tx)
	if err != nil {
		return err
	}

	return gormDB.WithContext(ctx).AutoMigrate(
		&Item{},
		&ChangeRecord{},
		&Notification{},
		&CustomField{},
		&Category{},
		&DeletedCategory{},
		&Rental{},
		&RentalStatus{},
	)
}

func downInit(ctx context.Context, tx *sql.Tx) error {
	gormDB, err := openTx(tx)
	if err != nil {
		return err
	}

	return gormDB.WithContext(ctx).Migrator().DropTable(
		&RentalStatus{},
		&Rental{},
		&DeletedCategory{},
		&Category{},
		&CustomField{},
		&Notification{},
		&ChangeRecord{},
		&Item{},
	)
}
