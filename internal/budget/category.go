package budget

// Cost categories a realization can be classified under.
const (
	CategoryMaterials     = "materials"
	CategoryLabor         = "labor"
	CategoryEquipment     = "equipment"
	CategorySubcontractor = "subcontractor"
	CategoryContingency   = "contingency"
	CategoryIndirect      = "indirect"
	CategoryOther         = "other"
)

// RAB item types.
const (
	ItemTypeMaterial      = "material"
	ItemTypeService       = "service"
	ItemTypeEquipment     = "equipment"
	ItemTypeSubcontractor = "subcontractor"
)

// Categories lists every valid cost category.
func Categories() []string {
	return []string{
		CategoryMaterials, CategoryLabor, CategoryEquipment,
		CategorySubcontractor, CategoryContingency, CategoryIndirect, CategoryOther,
	}
}

// CategoryForItemType maps a RAB item type to the cost category its
// realizations are recorded under. Unknown types fall through to other.
func CategoryForItemType(itemType string) string {
	switch itemType {
	case ItemTypeMaterial:
		return CategoryMaterials
	case ItemTypeService:
		return CategoryLabor
	case ItemTypeEquipment:
		return CategoryEquipment
	case ItemTypeSubcontractor:
		return CategorySubcontractor
	default:
		return CategoryOther
	}
}
