package schema

import "fmt"

// RoundedFloat is a money amount written with exactly two decimals.
type RoundedFloat float64

func (f RoundedFloat) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%.2f", f)), nil
}

func (f RoundedFloat) String() string {
	return fmt.Sprintf("%.2f", float64(f))
}

// Cents converts an amount in cents into a RoundedFloat.
func Cents(cents int64) RoundedFloat {
	return RoundedFloat(float64(cents) / 100)
}

type Package string

const (
	PackageStandard Package = "Standard"
	PackagePro      Package = "Pro"
	PackageElite    Package = "Elite"
)

var Packages = []Package{PackageStandard, PackagePro, PackageElite}

// ParsePackage returns the membership package named by s, Standard when s names none.
func ParsePackage(s string) Package {
	switch p := Package(s); p {
	case PackagePro, PackageElite:
		return p
	default:
		return PackageStandard
	}
}

type PaymentMethod string

const (
	PaymentMethodCard   PaymentMethod = "card"
	PaymentMethodWallet PaymentMethod = "wallet"
)

// ParsePaymentMethod falls back to card for anything but wallet.
func ParsePaymentMethod(s string) PaymentMethod {
	if PaymentMethod(s) == PaymentMethodWallet {
		return PaymentMethodWallet
	}
	return PaymentMethodCard
}
