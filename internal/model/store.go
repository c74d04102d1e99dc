package model

// StoreID identifies one of the fixed store locations
type StoreID uint

const (
	StoreCentro   StoreID = 1
	StoreShopping StoreID = 2
	StoreDeposito StoreID = 3
)

// Store is static reference data for a sales location
type Store struct {
	ID   StoreID `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Name string  `json:"name" gorm:"type:varchar(100);not null"`
}

// Stores lists the closed set of store locations in display order
var Stores = []Store{
	{ID: StoreCentro, Name: "Local Centro"},
	{ID: StoreShopping, Name: "Local Shopping"},
	{ID: StoreDeposito, Name: "Depósito"},
}

// Valid reports whether the id belongs to the fixed store set
func (id StoreID) Valid() bool {
	for _, s := range Stores {
		if s.ID == id {
			return true
		}
	}
	return false
}

// Name returns the display name of the store, or "" for unknown ids
func (id StoreID) Name() string {
	for _, s := range Stores {
		if s.ID == id {
			return s.Name
		}
	}
	return ""
}
