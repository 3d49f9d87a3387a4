package storage

// Storage aggregates every persistence concern backed by one database.
type Storage interface {
	CredentialStorage
	AnalysisStorage
	WordlistStorage
	StrengthCacheStorage
	SettingStorage
	Close() error
}
