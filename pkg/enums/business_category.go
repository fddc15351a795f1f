package enums

// BusinessCategory is the closed set of vendor business types.
type BusinessCategory string

const (
	BusinessCategoryManufacturing BusinessCategory = "Manufacturing"
	BusinessCategoryServices      BusinessCategory = "Services"
	BusinessCategoryTrading       BusinessCategory = "Trading"
	BusinessCategoryITSoftware    BusinessCategory = "IT/Software"
	BusinessCategoryConstruction  BusinessCategory = "Construction"
	BusinessCategoryAgriculture   BusinessCategory = "Agriculture"
	BusinessCategoryRetail        BusinessCategory = "Retail"
	BusinessCategoryHealthcare    BusinessCategory = "Healthcare"
	BusinessCategoryEducation     BusinessCategory = "Education"
	BusinessCategoryOther         BusinessCategory = "Other"
)

var businessCategories = []BusinessCategory{
	BusinessCategoryManufacturing,
	BusinessCategoryServices,
	BusinessCategoryTrading,
	BusinessCategoryITSoftware,
	BusinessCategoryConstruction,
	BusinessCategoryAgriculture,
	BusinessCategoryRetail,
	BusinessCategoryHealthcare,
	BusinessCategoryEducation,
	BusinessCategoryOther,
}

func (c BusinessCategory) String() string { return string(c) }

func (c BusinessCategory) IsValid() bool { return member(businessCategories, c) }

func ParseBusinessCategory(value string) (BusinessCategory, error) {
	return parse(businessCategories, "business category", value, true)
}
