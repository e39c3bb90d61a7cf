package state

var (
	rolePrefix              = []byte("role/")
	tokenBalancePrefix      = []byte("token/balance/")
	tokenAllowancePrefix    = []byte("token/allowance/")
	tokenSupplyKeyBytes     = []byte("token/supply")
	vestingLedgerPrefix     = []byte("vesting/ledger/")
	vestingCommitmentPrefix = []byte("vesting/commitment/")
	vestingIndexPrefix      = []byte("vesting/index/")
	vestingSinglePrefix     = []byte("vesting/single/")
	stakingPoolPrefix       = []byte("staking/pool/")
	stakingPositionPrefix   = []byte("staking/position/")
)

func joinKey(prefix []byte, parts ...[]byte) []byte {
	size := len(prefix)
	for _, part := range parts {
		size += len(part)
	}
	buf := make([]byte, 0, size)
	buf = append(buf, prefix...)
	for _, part := range parts {
		buf = append(buf, part...)
	}
	return buf
}
