package entity

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryGroupOf(t *testing.T) {
	tests := []struct {
		category Category
		group    CategoryGroup
		ok       bool
	}{
		{"haircuts", CategoryGroupBeauty, true},
		{"makeup", CategoryGroupBeauty, true},
		{"massage", CategoryGroupWellness, true},
		{"lifeCoaching", CategoryGroupMentalHealth, true},
		{"pilates", CategoryGroupFitness, true},
		{"reiki", CategoryGroupWellness, true},
		{"energyHealing", CategoryGroupAlternativeHealth, true},
		{"couplesMassage", CategoryGroupAdultOnlyMassage, true},
		{"other", CategoryGroupOther, true},
		{"skydiving", "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			group, ok := CategoryGroupOf(tt.category)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.group, group)
		})
	}
}

func TestCategory_IsAdultOnly(t *testing.T) {
	assert.True(t, Category("tantricMassage").IsAdultOnly())
	assert.False(t, Category("swedishMassage").IsAdultOnly())
	assert.False(t, Category("unknown").IsAdultOnly())
}

func TestService_ApplyCategoryAndPrice(t *testing.T) {
	var s Service
	require.True(t, s.ApplyCategory("nuruMassage"))
	assert.Equal(t, CategoryGroupAdultOnlyMassage, s.CategoryGroup)
	assert.True(t, s.IsAdultOnly)
	assert.True(t, s.RequiresAgeVerification)

	require.True(t, s.ApplyCategory("facial"))
	assert.Equal(t, CategoryGroupBeauty, s.CategoryGroup)
	assert.False(t, s.IsAdultOnly)

	assert.False(t, s.ApplyCategory("bogus"))
	assert.Equal(t, Category("facial"), s.Category)

	s.ApplyPrice(decimal.NewFromInt(50))
	assert.True(t, s.PriceRangeMin.Equal(decimal.NewFromInt(50)))
	assert.True(t, s.PriceRangeMax.Equal(decimal.NewFromInt(75)))
}

func TestServiceCategorySelection_OffersAdultServices(t *testing.T) {
	selection := DefaultServiceCategories()
	assert.False(t, selection.OffersAdultServices())
	assert.NotContains(t, selection, CategoryGroupOther)

	selection[CategoryGroupAdultOnlyMassage]["couplesMassage"] = false
	assert.False(t, selection.OffersAdultServices())

	selection[CategoryGroupAdultOnlyMassage]["sensualMassage"] = true
	assert.True(t, selection.OffersAdultServices())
}

func TestSubscription_DaysRemaining(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	sub := NewTrialSubscription(start)

	require.NotNil(t, sub.TrialEndDate)
	assert.Equal(t, time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC), *sub.TrialEndDate)
	assert.Equal(t, 91, sub.DaysRemaining(start))
	assert.Equal(t, 1, sub.DaysRemaining(start.AddDate(0, 3, 0).Add(-time.Hour)))

	sub.Status = SubscriptionActive
	assert.Equal(t, 0, sub.DaysRemaining(start))
}

func TestSplitName(t *testing.T) {
	first, last := SplitName("Ada King Lovelace")
	assert.Equal(t, "Ada", first)
	assert.Equal(t, "King Lovelace", last)

	first, last = SplitName("Prince")
	assert.Equal(t, "Prince", first)
	assert.Equal(t, "", last)
}
