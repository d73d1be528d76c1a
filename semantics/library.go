package semantics

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

var (
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
	interfaceType = reflect.TypeOf((*interface{})(nil)).Elem()
	stringType    = reflect.TypeOf("")
)

// Function is a Go function that computes a main attribute. It returns one value, optionally
// followed by an error.
type Function struct {
	Name  string
	value reflect.Value
	typ   reflect.Type
}

func newFunction(name string, fn interface{}) (*Function, error) {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func {
		return nil, fmt.Errorf("%v is not a function: %T", name, fn)
	}
	t := v.Type()
	switch {
	case t.NumOut() == 1:
	case t.NumOut() == 2 && t.Out(1) == errorType:
	default:
		return nil, fmt.Errorf("%v must return a value, optionally followed by an error: %v", name, t)
	}
	return &Function{
		Name:  name,
		value: v,
		typ:   t,
	}, nil
}

// Result is the type of the value the function returns.
func (f *Function) Result() reflect.Type {
	return f.typ.Out(0)
}

func (f *Function) String() string {
	return fmt.Sprintf("%v %v", f.Name, f.typ)
}

// param returns the type of parameter i. Every argument from the variadic parameter on
// belongs to it; its slice type is returned.
func (f *Function) param(i int) (reflect.Type, bool) {
	n := f.typ.NumIn()
	if f.typ.IsVariadic() && i >= n-1 {
		return f.typ.In(n - 1), true
	}
	return f.typ.In(i), false
}

// checkArity requires one argument per parameter. The variadic parameter takes one or more.
func (f *Function) checkArity(n int) error {
	in := f.typ.NumIn()
	if f.typ.IsVariadic() {
		if n < in {
			return fmt.Errorf("%v takes at least %v arguments, but %v are given", f.Name, in, n)
		}
		return nil
	}
	if n != in {
		return fmt.Errorf("%v takes %v arguments, but %v are given", f.Name, in, n)
	}
	return nil
}

func assignable(from, to reflect.Type) bool {
	return from.AssignableTo(to) || from.Kind() == reflect.Interface
}

// Check reports whether arguments of the given types can be passed to f. The arguments of
// the variadic parameter are flattened into it in order. A value of interface type is
// accepted for any parameter and checked when f is called.
func (f *Function) Check(args []Type) error {
	if err := f.checkArity(len(args)); err != nil {
		return err
	}
	for i, arg := range args {
		p, variadic := f.param(i)
		ok := false
		switch {
		case variadic:
			ok = assignable(arg.Host, p.Elem())
		case arg.Card == Value:
			ok = assignable(arg.Host, p)
		case arg.Card == Option:
			ok = assignable(arg.Host, p) || p.Kind() == reflect.Slice && assignable(arg.Host, p.Elem())
		case arg.Card == Sequence:
			ok = p.Kind() == reflect.Slice && assignable(arg.Host, p.Elem())
		}
		if !ok {
			return fmt.Errorf("argument %v of %v: a %v of %v is not assignable to %v", i+1, f.Name, arg.Card, arg.Host, p)
		}
	}
	return nil
}

// Call calls f. Option and sequence arguments are passed as []interface{}.
func (f *Function) Call(args []interface{}, cards []Cardinality) (interface{}, error) {
	if err := f.checkArity(len(args)); err != nil {
		return nil, err
	}
	var in []reflect.Value
	var rest reflect.Value
	for i, arg := range args {
		p, variadic := f.param(i)
		if variadic {
			if !rest.IsValid() {
				rest = reflect.MakeSlice(p, 0, len(args)-i)
			}
			elems, err := spread(arg, cards[i])
			if err != nil {
				return nil, fmt.Errorf("argument %v of %v: %w", i+1, f.Name, err)
			}
			for _, e := range elems {
				v, err := assign(e, p.Elem())
				if err != nil {
					return nil, fmt.Errorf("argument %v of %v: %w", i+1, f.Name, err)
				}
				rest = reflect.Append(rest, v)
			}
			continue
		}
		v, err := convert(arg, cards[i], p)
		if err != nil {
			return nil, fmt.Errorf("argument %v of %v: %w", i+1, f.Name, err)
		}
		in = append(in, v)
	}
	var out []reflect.Value
	if f.typ.IsVariadic() {
		out = f.value.CallSlice(append(in, rest))
	} else {
		out = f.value.Call(in)
	}
	if len(out) == 2 && !out[1].IsNil() {
		return nil, fmt.Errorf("%v: %w", f.Name, out[1].Interface().(error))
	}
	return out[0].Interface(), nil
}

// spread returns the values an argument holds: one for a value, up to one for an option and
// any number for a sequence.
func spread(arg interface{}, card Cardinality) ([]interface{}, error) {
	switch card {
	case Value:
		return []interface{}{arg}, nil
	case Option, Sequence:
		elems, ok := arg.([]interface{})
		if !ok {
			return nil, fmt.Errorf("a %v must be passed as []interface{}: %T", card, arg)
		}
		return elems, nil
	}
	return nil, fmt.Errorf("cannot pass a value of cardinality %v", card)
}

func convert(arg interface{}, card Cardinality, p reflect.Type) (reflect.Value, error) {
	if card == Value {
		if v, err := assign(arg, p); err == nil || p.Kind() != reflect.Slice {
			return v, err
		}
	}
	elems, err := spread(arg, card)
	if err != nil {
		return reflect.Value{}, err
	}
	if p.Kind() != reflect.Slice {
		if len(elems) == 0 {
			return reflect.Zero(p), nil
		}
		return assign(elems[0], p)
	}
	s := reflect.MakeSlice(p, len(elems), len(elems))
	for i, e := range elems {
		v, err := assign(e, p.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		s.Index(i).Set(v)
	}
	return s, nil
}

func assign(v interface{}, t reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("%T is not assignable to %v", v, t)
	}
	if t.Kind() == reflect.Interface {
		w := reflect.New(t).Elem()
		w.Set(rv)
		return w, nil
	}
	return rv, nil
}

// Library resolves function names of the mapping section.
type Library struct {
	funcs map[string]*Function
}

func NewLibrary() *Library {
	return &Library{
		funcs: map[string]*Function{},
	}
}

// Register adds fn under name, replacing a function registered before.
func (l *Library) Register(name string, fn interface{}) error {
	f, err := newFunction(name, fn)
	if err != nil {
		return err
	}
	l.funcs[name] = f
	return nil
}

func (l *Library) MustRegister(name string, fn interface{}) *Library {
	if err := l.Register(name, fn); err != nil {
		panic(err)
	}
	return l
}

func (l *Library) Lookup(name string) (*Function, bool) {
	f, ok := l.funcs[name]
	return f, ok
}

// Names returns the registered names in ascending order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.funcs))
	for name := range l.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Standard returns a library of general purpose functions.
func Standard() *Library {
	return NewLibrary().
		MustRegister("string", func(s string) string { return s }).
		MustRegister("int", func(s string) (int, error) { return strconv.Atoi(s) }).
		MustRegister("float", func(s string) (float64, error) { return strconv.ParseFloat(s, 64) }).
		MustRegister("value", func(v interface{}) interface{} { return v }).
		MustRegister("sum", func(xs ...int) int {
			n := 0
			for _, x := range xs {
				n += x
			}
			return n
		}).
		MustRegister("product", func(xs ...int) int {
			n := 1
			for _, x := range xs {
				n *= x
			}
			return n
		}).
		MustRegister("first", func(xs ...interface{}) interface{} {
			if len(xs) == 0 {
				return nil
			}
			return xs[0]
		}).
		MustRegister("list", func(xs ...interface{}) []interface{} { return xs }).
		MustRegister("count", func(xs ...interface{}) int { return len(xs) }).
		MustRegister("concat", func(xs ...string) string { return strings.Join(xs, "") }).
		MustRegister("join", func(sep string, xs ...string) string { return strings.Join(xs, sep) }).
		MustRegister("pair", func(a, b interface{}) []interface{} { return []interface{}{a, b} })
}
