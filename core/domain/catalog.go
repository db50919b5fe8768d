package domain

const (
	Users       = "users"
	Recipes     = "recipes"
	Ingredients = "ingredients"
	Messages    = "messages"
	Favourites  = "favourites"
)

// NewCatalog defines the recipes data model. Entities are defined before the
// entities that reference them.
func NewCatalog() (*Schema, error) {
	s := NewSchema()

	if _, err := s.Define(Users,
		Field{Name: "email", Type: TypeString, Required: true, Unique: true},
		Field{Name: "password", Type: TypeString, Required: true, Hidden: true},
		Field{Name: "name", Type: TypeString, Required: true},
	); err != nil {
		return nil, err
	}

	if _, err := s.Define(Recipes,
		Field{Name: "title", Type: TypeString},
		Field{Name: "description", Type: TypeText},
		Field{Name: "ingredients", Type: TypeText},
		Field{Name: "imgUrl", Type: TypeString},
		Field{Name: "userId", Type: TypeReference, References: Users},
	); err != nil {
		return nil, err
	}

	if _, err := s.Define(Ingredients,
		Field{Name: "name", Type: TypeString, Required: true},
		Field{Name: "quantity", Type: TypeString},
		Field{Name: "recipeId", Type: TypeReference, References: Recipes},
	); err != nil {
		return nil, err
	}

	if _, err := s.Define(Messages,
		Field{Name: "text", Type: TypeText, Required: true},
		Field{Name: "userId", Type: TypeReference, References: Users, Required: true},
	); err != nil {
		return nil, err
	}

	if _, err := s.DefineJoin(Favourites, Users, "userId", Recipes, "recipeId"); err != nil {
		return nil, err
	}

	return s, nil
}
