// Package mocks provides gomock implementations of the hexagonal ports for service and HTTP tests.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	tenants := mocks.NewMockTenantDirectory(ctrl)
//	tenants.EXPECT().Lookup(gomock.Any(), "op-1").Return(domainauth.TenantID("42"), nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=ports_mock.go github.com/hotelbooking/hotelweb/internal/ports AuthProvider,PasswordAuthenticator,SessionStore,RoleMapper,TenantDirectory,PaymentGateway
