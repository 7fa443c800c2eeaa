package enums

import "slices"

// InventoryOperation maps to the inventory_operation enum in Postgres.
type InventoryOperation string

const (
	// InventoryOperationDispensing is applied when a verified meter reading consumes tank volume.
	InventoryOperationDispensing InventoryOperation = "dispensing"
)

var validInventoryOperations = []InventoryOperation{
	InventoryOperationDispensing,
}

// IsValid reports whether the value matches the canonical inventory operation enum.
func (o InventoryOperation) IsValid() bool {
	return slices.Contains(validInventoryOperations, o)
}

// ParseInventoryOperation converts raw input into InventoryOperation.
func ParseInventoryOperation(value string) (InventoryOperation, error) {
	return parse("inventory operation", value, validInventoryOperations)
}
