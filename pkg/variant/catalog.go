package variant

// Catalog returns the fixed vehicle composition reference data. It is not
// derived from the identity; every call returns a fresh copy.
func Catalog() CompositionTests {
	return CompositionTests{
		VehicleTypes: []string{"Car", "Boat", "Plane"},
		Features:     []string{"Engine", "Wheels", "Wings", "Propeller"},
		TestCombinations: []Combination{
			{Vehicle: "Car", Features: []string{"Engine", "Wheels"}},
			{Vehicle: "Boat", Features: []string{"Engine", "Propeller"}},
			{Vehicle: "Plane", Features: []string{"Engine", "Wings"}},
		},
	}
}

// DefaultStudentID tags the built-in bundle returned by Default.
const DefaultStudentID = "default_student"

// Default returns the hand-picked bundle used when no artifact has been
// generated yet. Its values are round numbers chosen for readability and
// are not the hash-derived values of DefaultStudentID.
func Default() *Bundle {
	return &Bundle{
		StudentID: DefaultStudentID,
		Lab:       Lab,
		Shapes: ShapeTests{
			Circle:    Circle{Radius: 5.0, ExpectedArea: 78.5398, ExpectedPerimeter: 31.4159},
			Rectangle: Rectangle{Width: 4.0, Height: 3.0, ExpectedArea: 12.0, ExpectedPerimeter: 14.0},
			Square:    Square{Side: 5.0, ExpectedArea: 25.0, ExpectedPerimeter: 20.0},
			Triangle:  Triangle{SideA: 3.0, SideB: 4.0, SideC: 5.0, ExpectedArea: 6.0, ExpectedPerimeter: 12.0},
		},
		Payments: PaymentTests{
			Amounts:               []float64{50.0, 100.0, 250.0},
			CreditCardFeePercent:  3.0,
			PayPalFeePercent:      2.9,
			CryptoDiscountPercent: 2.0,
			ExpectedCreditCard:    []float64{51.5, 103.0, 257.5},
			ExpectedPayPal:        []float64{51.45, 102.9, 257.25},
			ExpectedCrypto:        []float64{49.0, 98.0, 245.0},
		},
		Observer: ObserverTests{
			EventTypes: []string{"user_login", "data_update", "notification", "error"},
			EmitCounts: []int{2, 3, 1},
			TestPayloads: Payloads{
				Message: MessagePayload{ID: 123, Message: "test_default"},
				Value:   ValuePayload{Value: 42.5, Active: true},
			},
		},
		Composition: Catalog(),
	}
}
