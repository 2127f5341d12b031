package services

// ServiceContainer bundles every service facade for injection into the HTTP
// layer and the workers.
type ServiceContainer struct {
	Wallet     WalletSvcFacade
	Campaign   CampaignSvcFacade
	Reconciler ReconcilerSvcFacade
}
