// Package contracts loads contract artifacts and talks to deployed contracts through a Backend.
package contracts

// Kind identifies a deployable contract class. The kind is also the artifact file stem.
type Kind string

const (
	KindERC20           Kind = "ERC20"
	KindBountyToken     Kind = "BountyToken"
	KindNetworkRegistry Kind = "NetworkRegistry"
	KindNetworkV2       Kind = "Network_v2"
)

// Kinds lists the kinds needed to bootstrap a network.
func Kinds() []Kind {
	return []Kind{KindERC20, KindBountyToken, KindNetworkRegistry, KindNetworkV2}
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	return string(k)
}
