package entity

// Category is the fine-grained service tag chosen by a provider.
type Category string

// CategoryGroup is the coarse taxonomy bucket a Category belongs to.
type CategoryGroup string

const (
	CategoryGroupBeauty            CategoryGroup = "beautyServices"
	CategoryGroupWellness          CategoryGroup = "wellnessAndMassage"
	CategoryGroupMentalHealth      CategoryGroup = "mentalHealthAndConsulting"
	CategoryGroupFitness           CategoryGroup = "fitnessAndPersonalTraining"
	CategoryGroupAlternativeHealth CategoryGroup = "alternativeHealth"
	CategoryGroupAdultOnlyMassage  CategoryGroup = "adultOnlyMassage"
	CategoryGroupOther             CategoryGroup = "other"
)

// categoryGroups is the single source of truth for category -> group.
// Legacy tags (hair, nails, massage, skincare) are kept for old listings.
var categoryGroups = map[Category]CategoryGroup{
	"hairStyling":    CategoryGroupBeauty,
	"haircuts":       CategoryGroupBeauty,
	"hairColoring":   CategoryGroupBeauty,
	"hairExtensions": CategoryGroupBeauty,
	"manicure":       CategoryGroupBeauty,
	"pedicure":       CategoryGroupBeauty,
	"facial":         CategoryGroupBeauty,
	"makeup":         CategoryGroupBeauty,
	"waxing":         CategoryGroupBeauty,
	"lashExtensions": CategoryGroupBeauty,
	"eyebrowStyling": CategoryGroupBeauty,
	"sprayTanning":   CategoryGroupBeauty,
	"hair":           CategoryGroupBeauty,
	"nails":          CategoryGroupBeauty,
	"skincare":       CategoryGroupBeauty,

	"swedishMassage":  CategoryGroupWellness,
	"deepTissue":      CategoryGroupWellness,
	"hotStone":        CategoryGroupWellness,
	"sportsMassage":   CategoryGroupWellness,
	"prenatalMassage": CategoryGroupWellness,
	"reflexology":     CategoryGroupWellness,
	"acupuncture":     CategoryGroupWellness,
	"cuppingTherapy":  CategoryGroupWellness,
	"reiki":           CategoryGroupWellness,
	"privateYoga":     CategoryGroupWellness,
	"massage":         CategoryGroupWellness,

	"therapySessions":        CategoryGroupMentalHealth,
	"counseling":             CategoryGroupMentalHealth,
	"psychologyConsultation": CategoryGroupMentalHealth,
	"lifeCoaching":           CategoryGroupMentalHealth,
	"careerCounseling":       CategoryGroupMentalHealth,
	"relationshipCounseling": CategoryGroupMentalHealth,
	"guidedMeditation":       CategoryGroupMentalHealth,
	"stressManagement":       CategoryGroupMentalHealth,

	"personalTraining":    CategoryGroupFitness,
	"pilates":             CategoryGroupFitness,
	"nutritionConsulting": CategoryGroupFitness,
	"fitnessAssessment":   CategoryGroupFitness,
	"assistedStretching":  CategoryGroupFitness,

	"naturopathy":           CategoryGroupAlternativeHealth,
	"homeopathy":            CategoryGroupAlternativeHealth,
	"ayurvedicConsultation": CategoryGroupAlternativeHealth,
	"herbalistConsultation": CategoryGroupAlternativeHealth,
	"energyHealing":         CategoryGroupAlternativeHealth,

	"sensualMassage":   CategoryGroupAdultOnlyMassage,
	"tantricMassage":   CategoryGroupAdultOnlyMassage,
	"fullBodyMassage":  CategoryGroupAdultOnlyMassage,
	"nuruMassage":      CategoryGroupAdultOnlyMassage,
	"fourHandsMassage": CategoryGroupAdultOnlyMassage,
	"couplesMassage":   CategoryGroupAdultOnlyMassage,

	"other": CategoryGroupOther,
}

// CategoryGroupOf looks up the group of c. ok is false for unknown categories.
func CategoryGroupOf(c Category) (group CategoryGroup, ok bool) {
	group, ok = categoryGroups[c]
	return group, ok
}

// IsAdultOnly reports whether c belongs to the adult-only group.
func (c Category) IsAdultOnly() bool {
	group, ok := categoryGroups[c]
	return ok && group == CategoryGroupAdultOnlyMassage
}

// IsValid reports whether c is a known category.
func (c Category) IsValid() bool {
	_, ok := categoryGroups[c]
	return ok
}

// CategoryGroups lists every group in display order.
func CategoryGroups() []CategoryGroup {
	return []CategoryGroup{
		CategoryGroupBeauty,
		CategoryGroupWellness,
		CategoryGroupMentalHealth,
		CategoryGroupFitness,
		CategoryGroupAlternativeHealth,
		CategoryGroupAdultOnlyMassage,
		CategoryGroupOther,
	}
}

// IsValid reports whether g is a known group.
func (g CategoryGroup) IsValid() bool {
	for _, known := range CategoryGroups() {
		if g == known {
			return true
		}
	}
	return false
}
