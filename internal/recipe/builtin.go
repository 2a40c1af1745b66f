package recipe

import "fmt"

const unsplash = "https://images.unsplash.com/photo-%s?q=80&w=1200&auto=format&fit=crop"

// Builtin returns the compiled-in catalog entries. Each call returns fresh
// slices so callers cannot affect each other.
func Builtin() []Recipe {
	return []Recipe{
		{
			ID:          "1",
			Title:       "Grilled Salmon with Lemon",
			Description: "Juicy salmon with bright lemon and herbs.",
			Image:       imageURL("1504674900247-0877df9cc836"),
			Time:        "25m",
			Serves:      2,
			Ingredients: []string{
				"2 salmon fillets",
				"1 lemon (sliced)",
				"2 tbsp olive oil",
				"Salt & pepper",
				"Fresh dill",
			},
			Steps: []string{
				"Preheat grill to medium-high.",
				"Brush salmon with olive oil; season with salt and pepper.",
				"Grill skin-side down for 6–8 minutes.",
				"Top with lemon slices and dill; rest 2 minutes and serve.",
			},
		},
		{
			ID:          "2",
			Title:       "Creamy Mushroom Pasta",
			Description: "Silky sauce with garlic and parmesan.",
			Image:       imageURL("1512058564366-18510be2db19"),
			Time:        "30m",
			Serves:      3,
			Ingredients: []string{
				"200g pasta",
				"200g mushrooms, sliced",
				"2 cloves garlic",
				"150ml cream",
				"Parmesan, salt & pepper",
			},
			Steps: []string{
				"Cook pasta until al dente.",
				"Sauté mushrooms and garlic in butter until golden.",
				"Add cream and simmer; fold in pasta.",
				"Finish with parmesan and pepper.",
			},
		},
		{
			ID:          "3",
			Title:       "Avocado Toast Deluxe",
			Description: "Crunchy toast with creamy avocado.",
			Image:       imageURL("1551183053-bf91a1d81141"),
			Time:        "10m",
			Serves:      1,
			Ingredients: []string{"2 slices bread", "1 ripe avocado", "Chili flakes", "Lemon", "Salt"},
			Steps: []string{
				"Toast bread.",
				"Mash avocado with lemon and salt.",
				"Spread on toast and add chili flakes.",
			},
		},
		{
			ID:          "4",
			Title:       "Colorful Buddha Bowl",
			Description: "Wholesome bowl with veggies and grains.",
			Image:       imageURL("1512621776951-a57141f2eefd"),
			Time:        "20m",
			Serves:      2,
			Ingredients: []string{"Cooked quinoa", "Roasted veggies", "Greens", "Hummus", "Seeds"},
			Steps: []string{
				"Arrange quinoa with roasted veggies and greens.",
				"Top with hummus and seeds; drizzle olive oil.",
			},
		},
		{
			ID:          "5",
			Title:       "Classic Margherita Pizza",
			Description: "Tomato, mozzarella, and basil.",
			Image:       imageURL("1548365328-9f547fb09530"),
			Time:        "15m",
			Serves:      2,
			Ingredients: []string{"Pizza dough", "Tomato sauce", "Mozzarella", "Fresh basil", "Olive oil"},
			Steps: []string{
				"Preheat oven to highest setting.",
				"Spread sauce, add mozzarella.",
				"Bake until crust is golden; finish with basil and oil.",
			},
		},
		{
			ID:          "6",
			Title:       "Berry Smoothie",
			Description: "Refreshing and vitamin-rich blend.",
			Image:       imageURL("1526318472351-c75fcf070305"),
			Time:        "5m",
			Serves:      1,
			Ingredients: []string{"Mixed berries", "Banana", "Yogurt", "Honey"},
			Steps: []string{
				"Blend berries, banana, and yogurt.",
				"Sweeten with honey to taste.",
			},
		},
		{
			ID:          "7",
			Title:       "Chicken Stir-fry",
			Description: "Quick wok-tossed chicken and veggies.",
			Image:       imageURL("1544025162-d76694265947"),
			Time:        "18m",
			Serves:      2,
			Ingredients: []string{"Chicken strips", "Mixed veggies", "Soy sauce", "Garlic", "Ginger"},
			Steps: []string{
				"Sear chicken until browned.",
				"Add veggies, garlic, ginger; stir-fry.",
				"Splash soy sauce; serve hot.",
			},
		},
		{
			ID:          "8",
			Title:       "Chocolate Chip Cookies",
			Description: "Chewy center with crisp edges.",
			Image:       imageURL("1542834369-f10ebf06d3cb"),
			Time:        "20m",
			Serves:      4,
			Ingredients: []string{"Flour", "Butter", "Sugar", "Egg", "Choc chips", "Baking soda"},
			Steps: []string{
				"Cream butter and sugar; add egg.",
				"Fold in dry ingredients and chocolate chips.",
				"Scoop and bake until edges set.",
			},
		},
	}
}

// BuiltinCatalog builds a catalog from Builtin. The built-in data is known to
// be valid, so a construction error is a programming mistake.
func BuiltinCatalog() *Catalog {
	c, err := NewCatalog(Builtin())
	if err != nil {
		panic(err)
	}
	return c
}

func imageURL(photo string) string {
	return fmt.Sprintf(unsplash, photo)
}
