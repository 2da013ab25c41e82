package secret

// ServiceName 是 just 在 OS keyring 中使用的 service。
const ServiceName = "just"

// KeyringAPI 是对 OS keyring 的最小抽象，便于测试与跨平台。
type KeyringAPI interface {
	Get(service, account string) (string, error)
	Set(service, account, value string) error
	Delete(service, account string) error
}

func defaultKeyring() KeyringAPI {
	return &osKeyring{}
}

// osKeyring 的方法按平台实现，见 keyring_default.go / keyring_windows.go。
type osKeyring struct{}
