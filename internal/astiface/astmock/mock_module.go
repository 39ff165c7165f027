// Package astmock holds hand-authored gomock doubles for astiface's
// interfaces, in the shape `mockgen` would generate. The teacher generates
// these with `//go:generate mockgen ...` (see api/api_suite_test.go); we
// write the equivalent by hand since this toolchain never invokes external
// code generators.
package astmock

import (
	reflect "reflect"

	gomock "github.com/golang/mock/gomock"
	"github.com/sarchlab/grhc/internal/astiface"
)

// MockModule is a mock of the astiface.Module interface.
type MockModule struct {
	ctrl     *gomock.Controller
	recorder *MockModuleMockRecorder
}

// MockModuleMockRecorder is the mock recorder for MockModule.
type MockModuleMockRecorder struct {
	mock *MockModule
}

// NewMockModule creates a new mock instance.
func NewMockModule(ctrl *gomock.Controller) *MockModule {
	mock := &MockModule{ctrl: ctrl}
	mock.recorder = &MockModuleMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockModule) EXPECT() *MockModuleMockRecorder {
	return m.recorder
}

// Name mocks base method.
func (m *MockModule) Name() string {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Name")
	ret0, _ := ret[0].(string)
	return ret0
}

// Name indicates an expected call of Name.
func (mr *MockModuleMockRecorder) Name() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Name", reflect.TypeOf((*MockModule)(nil).Name))
}

// Params mocks base method.
func (m *MockModule) Params() []astiface.ParamBinding {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Params")
	ret0, _ := ret[0].([]astiface.ParamBinding)
	return ret0
}

// Params indicates an expected call of Params.
func (mr *MockModuleMockRecorder) Params() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Params", reflect.TypeOf((*MockModule)(nil).Params))
}

// Ports mocks base method.
func (m *MockModule) Ports() []astiface.PortDecl {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Ports")
	ret0, _ := ret[0].([]astiface.PortDecl)
	return ret0
}

// Ports indicates an expected call of Ports.
func (mr *MockModuleMockRecorder) Ports() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Ports", reflect.TypeOf((*MockModule)(nil).Ports))
}

// Items mocks base method.
func (m *MockModule) Items() []astiface.Item {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Items")
	ret0, _ := ret[0].([]astiface.Item)
	return ret0
}

// Items indicates an expected call of Items.
func (mr *MockModuleMockRecorder) Items() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Items", reflect.TypeOf((*MockModule)(nil).Items))
}
