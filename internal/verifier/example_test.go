package verifier_test

import (
	"fmt"

	"addressproof/internal/textnorm"
	"addressproof/internal/verifier"
)

// Example shows the matching rules applied to text that has already been read.
func Example() {
	v := verifier.New(nil, nil, verifier.Options{})

	result := v.Evaluate(textnorm.Normalize("JOHN MEHTA RESIDES AT NALLASOPARA EAST"), "John Mehta")
	fmt.Println(result.IsValid)
	fmt.Println(result.Message())

	result = v.Evaluate(textnorm.Normalize("RESIDENT OF VASAI WEST, NEAR STATION"), "John Mehta")
	fmt.Println(result.FailureKind)
	fmt.Println(result.Message())

	// Output:
	// true
	// Verification successful! Address: nalla sopara, nalasopara, nallasopara, Name: john mehta
	// name_mismatch
	// Name "John Mehta" not found in document. Found: No matching name
}
