package repositories

// RepositoryProvider bundles every repository facade for injection into the
// service layer.
type RepositoryProvider struct {
	WalletRepo   WalletRepositoryFacade
	LedgerRepo   LedgerRepositoryFacade
	CampaignRepo CampaignRepositoryFacade
	PartyRepo    PartyDirectoryFacade
}
