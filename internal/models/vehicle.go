package models

import "strings"

// VehicleType представляет тип транспортного средства
type VehicleType string

const (
	VehicleTypeCar       VehicleType = "car"
	VehicleTypeMotorbike VehicleType = "motorbike"
	VehicleTypeTractor   VehicleType = "tractor"
	VehicleTypeEmergency VehicleType = "emergency"
	VehicleTypeDiplomat  VehicleType = "diplomat"
	VehicleTypeForeign   VehicleType = "foreign"
	VehicleTypeMilitary  VehicleType = "military"
)

var tollExemptVehicleTypes = map[VehicleType]bool{
	VehicleTypeMotorbike: true,
	VehicleTypeTractor:   true,
	VehicleTypeEmergency: true,
	VehicleTypeDiplomat:  true,
	VehicleTypeForeign:   true,
	VehicleTypeMilitary:  true,
}

// IsTollExempt сообщает, освобождён ли тип от сборов.
// Неизвестный или пустой тип считается платным.
func (v VehicleType) IsTollExempt() bool {
	return tollExemptVehicleTypes[v]
}

// IsValid проверяет, что тип известен.
func (v VehicleType) IsValid() bool {
	return v == VehicleTypeCar || tollExemptVehicleTypes[v]
}

// NormalizePlate убирает пробелы и дефисы из номера и приводит его к верхнему регистру.
func NormalizePlate(plate string) string {
	plate = strings.ReplaceAll(plate, " ", "")
	plate = strings.ReplaceAll(plate, "-", "")
	return strings.ToUpper(plate)
}
