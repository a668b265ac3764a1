package eventbus

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/payroll-bot/pkg/serrors"
)

// EventBus fans domain events out to handlers whose parameter list matches the published args.
type EventBus interface {
	Publish(args ...any)
	PublishE(args ...any) error
	Subscribe(handler any)
	Unsubscribe(handler any)
	SubscribersCount() int
}

var (
	ErrNoSubscribers        = serrors.NewError("EVENTBUS_NO_SUBSCRIBERS", "no matching subscribers", "")
	ErrInvalidHandlerReturn = serrors.NewError("EVENTBUS_INVALID_HANDLER_RETURN", "invalid handler return signature", "")
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

type publisherImpl struct {
	log      *logrus.Entry
	mu       sync.RWMutex
	handlers []any
}

func NewEventPublisher(log *logrus.Logger) EventBus {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &publisherImpl{log: log.WithField("component", "eventbus")}
}

// MatchSignature reports whether handler can be called with args.
func MatchSignature(handler any, args []any) bool {
	t := reflect.TypeOf(handler)
	if t == nil || t.Kind() != reflect.Func || t.NumIn() != len(args) {
		return false
	}
	for i, arg := range args {
		paramType := t.In(i)
		if arg == nil {
			if paramType.Kind() != reflect.Interface && paramType.Kind() != reflect.Ptr {
				return false
			}
			continue
		}
		argType := reflect.TypeOf(arg)
		if paramType.Kind() == reflect.Interface {
			if !argType.Implements(paramType) {
				return false
			}
			continue
		}
		if !argType.AssignableTo(paramType) {
			return false
		}
	}
	return true
}

func (p *publisherImpl) matching(args []any) []any {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]any, 0, len(p.handlers))
	for _, h := range p.handlers {
		if MatchSignature(h, args) {
			out = append(out, h)
		}
	}
	return out
}

func callArgs(fn reflect.Value, args []any) []reflect.Value {
	in := make([]reflect.Value, len(args))
	for i, arg := range args {
		if arg == nil {
			in[i] = reflect.Zero(fn.Type().In(i))
			continue
		}
		in[i] = reflect.ValueOf(arg)
	}
	return in
}

// Publish delivers args to every matching handler. Handler panics are logged
// and do not stop delivery to the remaining handlers.
func (p *publisherImpl) Publish(args ...any) {
	handled := false
	for _, h := range p.matching(args) {
		fn := reflect.ValueOf(h)
		func() {
			defer func() {
				if r := recover(); r != nil {
					p.log.WithField("handler", fn.Type().String()).
						Errorf("handler panicked with args %v: %v", args, r)
				}
			}()
			out := fn.Call(callArgs(fn, args))
			handled = true
			if len(out) == 1 && out[0].Type() == errorType && !out[0].IsNil() {
				p.log.WithError(out[0].Interface().(error)).
					WithField("handler", fn.Type().String()).
					Warn("handler returned error")
			}
		}()
	}
	if !handled {
		p.log.Debugf("no matching subscribers for event with args: %v", args)
	}
}

// PublishE is Publish that collects handler errors and panics instead of logging them.
func (p *publisherImpl) PublishE(args ...any) error {
	handlers := p.matching(args)
	if len(handlers) == 0 {
		return ErrNoSubscribers
	}

	var errs []error
	for _, h := range handlers {
		fn := reflect.ValueOf(h)
		func() {
			defer func() {
				if r := recover(); r != nil {
					errs = append(errs, fmt.Errorf("eventbus: handler %s panicked: %v", fn.Type().String(), r))
				}
			}()
			out := fn.Call(callArgs(fn, args))
			switch {
			case len(out) == 0:
			case len(out) != 1 || out[0].Type() != errorType:
				errs = append(errs, fmt.Errorf("%w: handler %s", ErrInvalidHandlerReturn, fn.Type().String()))
			case !out[0].IsNil():
				errs = append(errs, out[0].Interface().(error))
			}
		}()
	}
	return errors.Join(errs...)
}

func (p *publisherImpl) Subscribe(handler any) {
	t := reflect.TypeOf(handler)
	if t == nil || t.Kind() != reflect.Func {
		panic("handler must be a function")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers = append(p.handlers, handler)
}

// Unsubscribe removes handler. Funcs are not comparable, so identity is the code pointer.
func (p *publisherImpl) Unsubscribe(handler any) {
	target := reflect.ValueOf(handler).Pointer()
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, h := range p.handlers {
		if reflect.ValueOf(h).Pointer() == target {
			p.handlers = append(p.handlers[:i], p.handlers[i+1:]...)
			return
		}
	}
}

func (p *publisherImpl) SubscribersCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.handlers)
}
