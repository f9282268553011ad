//go:build windows

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"
	"golang.org/x/sys/windows"
)

const (
	acadProgID  = "AutoCAD.Application"
	productName = "AutoCAD"

	// WindowState value for a minimized application window.
	windowStateMinimized = 1
)

type acadLauncher struct{}

// NewAutoCAD returns a Launcher that drives AutoCAD through its COM
// automation object, the same surface the interactive product exposes.
func NewAutoCAD() Launcher { return acadLauncher{} }

func (acadLauncher) Start(exePath string) (Session, error) {
	if _, err := os.Stat(exePath); err != nil {
		return nil, &Error{Kind: Unreachable, Op: OpStart, Err: fmt.Errorf("engine executable not found at %s", exePath)}
	}

	// The single-threaded COM apartment is bound to the OS thread that
	// joins it, so the goroutine driving this session stays pinned to its
	// thread from here until Quit releases the apartment.
	runtime.LockOSThread()
	// S_FALSE from an already-initialized apartment is not a failure.
	_ = ole.CoInitialize(0)

	unknown, err := oleutil.CreateObject(acadProgID)
	if err != nil {
		ole.CoUninitialize()
		runtime.UnlockOSThread()
		return nil, &Error{Kind: Unreachable, Op: OpStart, Err: err}
	}
	app, err := unknown.QueryInterface(ole.IID_IDispatch)
	unknown.Release()
	if err != nil {
		ole.CoUninitialize()
		runtime.UnlockOSThread()
		return nil, &Error{Kind: Unreachable, Op: OpStart, Err: err}
	}

	// UI suppression is best-effort and unreported: a visible engine window
	// is cosmetic, not a processing failure.
	_, _ = oleutil.PutProperty(app, "Visible", false)
	_, _ = oleutil.PutProperty(app, "WindowState", windowStateMinimized)
	hideEngineWindows(productName)

	return &acadSession{app: app}, nil
}

type acadSession struct {
	app *ole.IDispatch
}

// comError classifies a raw COM failure at the boundary. RPC-level
// disconnects surface as the engine having crashed; everything else keeps
// its detail under OperationFailed.
func comError(op string, err error) *Error {
	kind := OperationFailed
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "rpc server is unavailable") ||
		strings.Contains(msg, "disconnected") ||
		strings.Contains(msg, "object invoked has disconnected") {
		kind = Disconnected
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

func (s *acadSession) Open(path string) (Document, error) {
	docs, err := oleutil.GetProperty(s.app, "Documents")
	if err != nil {
		return nil, comError(OpOpen, err)
	}
	defer docs.Clear()

	v, err := oleutil.CallMethod(docs.ToIDispatch(), "Open", path)
	if err != nil {
		return nil, comError(OpOpen, err)
	}
	return &acadDocument{doc: v.ToIDispatch(), path: path}, nil
}

func (s *acadSession) SendCommand(cmd string) error {
	active, err := oleutil.GetProperty(s.app, "ActiveDocument")
	if err != nil {
		return comError(OpSend, err)
	}
	defer active.Clear()

	if _, err := oleutil.CallMethod(active.ToIDispatch(), "SendCommand", cmd); err != nil {
		return comError(OpSend, err)
	}
	return nil
}

func (s *acadSession) IsOpen(path string) (bool, error) {
	docs, err := oleutil.GetProperty(s.app, "Documents")
	if err != nil {
		return false, comError(OpEnumerate, err)
	}
	defer docs.Clear()
	coll := docs.ToIDispatch()

	countVar, err := oleutil.GetProperty(coll, "Count")
	if err != nil {
		return false, comError(OpEnumerate, err)
	}
	count := int(countVar.Val)

	want := filepath.Clean(path)
	for i := 0; i < count; i++ {
		item, err := oleutil.CallMethod(coll, "Item", i)
		if err != nil {
			return false, comError(OpEnumerate, err)
		}
		nameVar, err := oleutil.GetProperty(item.ToIDispatch(), "FullName")
		item.Clear()
		if err != nil {
			return false, comError(OpEnumerate, err)
		}
		if strings.EqualFold(filepath.Clean(nameVar.ToString()), want) {
			return true, nil
		}
	}
	return false, nil
}

func (s *acadSession) Quit() error {
	_, err := oleutil.CallMethod(s.app, "Quit")
	s.app.Release()
	s.app = nil
	ole.CoUninitialize()
	runtime.UnlockOSThread()
	if err != nil {
		return comError(OpQuit, err)
	}
	return nil
}

type acadDocument struct {
	doc  *ole.IDispatch
	path string
}

func (d *acadDocument) FullName() string { return d.path }

func (d *acadDocument) Close(saveChanges bool) error {
	if _, err := oleutil.CallMethod(d.doc, "Close", saveChanges); err != nil {
		return comError(OpClose, err)
	}
	d.doc.Release()
	d.doc = nil
	return nil
}

var (
	user32            = windows.NewLazySystemDLL("user32.dll")
	procEnumWindows   = user32.NewProc("EnumWindows")
	procGetWindowText = user32.NewProc("GetWindowTextW")
	procIsWindowVis   = user32.NewProc("IsWindowVisible")
	procShowWindow    = user32.NewProc("ShowWindow")
)

const swHide = 0

// hideEngineWindows walks the top-level windows and hides any visible one
// whose title contains the engine product name.
func hideEngineWindows(product string) {
	cb := syscall.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		if vis, _, _ := procIsWindowVis.Call(hwnd); vis == 0 {
			return 1 // continue enumeration
		}
		var buf [512]uint16
		n, _, _ := procGetWindowText.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
		if n > 0 && strings.Contains(syscall.UTF16ToString(buf[:n]), product) {
			procShowWindow.Call(hwnd, swHide)
		}
		return 1
	})
	_, _, _ = procEnumWindows.Call(cb, 0)
}
