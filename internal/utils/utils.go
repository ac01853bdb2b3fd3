package utils

// MaskWallet masks a wallet identity for logging, keeping the first and last
// four characters.
func MaskWallet(wallet string) string {
	if len(wallet) > 10 {
		return wallet[:4] + "****" + wallet[len(wallet)-4:]
	}
	return "****"
}
