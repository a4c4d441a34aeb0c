package corpus

import (
	"cmp"
	"errors"
	"slices"
	"strings"

	"digital.vasic.specs/pkg/fault"
	"digital.vasic.specs/pkg/matcher"
	"digital.vasic.specs/pkg/spec"
)

// Spaceship is the three-way comparison a <=> b. It returns -1, 0
// or 1, or nil when the operands cannot be ordered. Operands that
// only order through a collaborator (to_str or <=>) are asked
// through the matcher.Receiver protocol.
func Spaceship(a, b any) (any, error) {
	c, err := matcher.Compare(a, b)
	if errors.Is(err, fault.ArgumentError) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// StringEquals is String#==: true only for another string with
// the same bytes.
func StringEquals(s string, other any) bool {
	o, ok := other.(string)
	return ok && o == s
}

// MyString is a string subclass. It converts and orders like its
// underlying string.
type MyString string

// ToStr implements matcher.StringConvertible.
func (m MyString) ToStr() string { return string(m) }

// CompareTo implements matcher.Comparable.
func (m MyString) CompareTo(other any) (int, bool) {
	c, err := matcher.Compare(string(m), other)
	return c, err == nil
}

// Encoding identifies a character encoding. Its value is the
// encoding index used to break ties between byte-identical
// strings.
type Encoding int

// Known encodings, in index order.
const (
	Binary Encoding = iota
	UTF8
	USASCII
	ISO88591
)

var encodingNames = map[Encoding]string{
	Binary:   "ASCII-8BIT",
	UTF8:     "UTF-8",
	USASCII:  "US-ASCII",
	ISO88591: "ISO-8859-1",
}

func (e Encoding) String() string {
	if name, ok := encodingNames[e]; ok {
		return name
	}
	return "unknown"
}

// Encoded is a byte string tagged with an encoding.
type Encoded struct {
	Bytes    string
	Encoding Encoding
}

// ForceEncoding tags s with enc without converting it.
func ForceEncoding(s string, enc Encoding) Encoded {
	return Encoded{Bytes: s, Encoding: enc}
}

// CompareTo orders bytewise. Byte-identical strings compare equal
// when they are ASCII-only or share an encoding; otherwise the
// encoding index decides. A plain string counts as UTF-8.
func (e Encoded) CompareTo(other any) (int, bool) {
	var o Encoded
	switch v := other.(type) {
	case Encoded:
		o = v
	case string:
		o = ForceEncoding(v, UTF8)
	default:
		return 0, false
	}
	if c := strings.Compare(e.Bytes, o.Bytes); c != 0 {
		return c, true
	}
	if e.Encoding == o.Encoding || asciiOnly(e.Bytes) {
		return 0, true
	}
	return cmp.Compare(e.Encoding, o.Encoding), true
}

func asciiOnly(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func declareString(root *spec.Group) {
	spaceship := func(env *spec.Env, a, b any) any {
		v, err := Spaceship(a, b)
		env.Must(err)
		return v
	}
	check := func(env *spec.Env, op func(a, b any) (bool, error), a, b any) bool {
		ok, err := op(a, b)
		env.Must(err)
		return ok
	}
	raises := func(op func(a, b any) (bool, error), a, b any) func() error {
		return func() error {
			_, err := op(a, b)
			return err
		}
	}

	root.Describe("String#<=> with String", func(g *spec.Group) {
		g.It("compares individual characters based on their ascii value", func(env *spec.Env) {
			ascii := make([]string, 256)
			for i := range ascii {
				ascii[i] = string([]byte{byte(i)})
			}
			sorted := slices.Clone(ascii)
			slices.SortStableFunc(sorted, func(a, b string) int {
				c, _ := matcher.Compare(a, b)
				return c
			})
			env.Expect(sorted).To(matcher.Equal(ascii))
		})

		g.It("returns -1 when self is less than other", func(env *spec.Env) {
			env.Expect(spaceship(env, "this", "those")).To(matcher.Equal(-1))
		})

		g.It("returns 0 when self is equal to other", func(env *spec.Env) {
			env.Expect(spaceship(env, "yep", "yep")).To(matcher.Equal(0))
		})

		g.It("returns 1 when self is greater than other", func(env *spec.Env) {
			env.Expect(spaceship(env, "yoddle", "griddle")).To(matcher.Equal(1))
		})

		g.It("considers string that comes lexicographically first to be less if strings have same size", func(env *spec.Env) {
			env.Expect(spaceship(env, "aba", "abc")).To(matcher.Equal(-1))
			env.Expect(spaceship(env, "abc", "aba")).To(matcher.Equal(1))
		})

		g.It("doesn't consider shorter string to be less if longer string starts with shorter one", func(env *spec.Env) {
			env.Expect(spaceship(env, "abc", "abcd")).To(matcher.Equal(-1))
			env.Expect(spaceship(env, "abcd", "abc")).To(matcher.Equal(1))
		})

		g.It("compares shorter string with corresponding number of first chars of longer string", func(env *spec.Env) {
			env.Expect(spaceship(env, "abx", "abcd")).To(matcher.Equal(1))
			env.Expect(spaceship(env, "abcd", "abx")).To(matcher.Equal(-1))
		})

		g.It("ignores subclass differences", func(env *spec.Env) {
			a, b := "hello", MyString("hello")
			env.Expect(spaceship(env, a, b)).To(matcher.Equal(0))
			env.Expect(spaceship(env, b, a)).To(matcher.Equal(0))
		})

		g.It("returns 0 if self and other are bytewise identical and have the same encoding", func(env *spec.Env) {
			env.Expect(spaceship(env, "ÄÖÜ", "ÄÖÜ")).To(matcher.Equal(0))
		})

		g.It("returns -1 if self is bytewise less than other", func(env *spec.Env) {
			env.Expect(spaceship(env, "ÄÖÛ", "ÄÖÜ")).To(matcher.Equal(-1))
		})

		g.It("returns 1 if self is bytewise greater than other", func(env *spec.Env) {
			env.Expect(spaceship(env, "ÄÖÜ", "ÄÖÛ")).To(matcher.Equal(1))
		})

		g.It("ignores encoding difference", func(env *spec.Env) {
			env.Expect(spaceship(env,
				ForceEncoding("ÄÖÛ", UTF8), ForceEncoding("ÄÖÜ", ISO88591),
			)).To(matcher.Equal(-1))
			env.Expect(spaceship(env,
				ForceEncoding("ÄÖÜ", UTF8), ForceEncoding("ÄÖÛ", ISO88591),
			)).To(matcher.Equal(1))
		})

		g.It("returns 0 with identical ASCII-compatible bytes of different encodings", func(env *spec.Env) {
			env.Expect(spaceship(env,
				ForceEncoding("abc", UTF8), ForceEncoding("abc", ISO88591),
			)).To(matcher.Equal(0))
		})

		g.It("compares the indices of the encodings when the strings have identical non-ASCII-compatible bytes", func(env *spec.Env) {
			env.Expect(spaceship(env,
				ForceEncoding("\xff", UTF8), ForceEncoding("\xff", ISO88591),
			)).To(matcher.Equal(-1))
			env.Expect(spaceship(env,
				ForceEncoding("\xff", ISO88591), ForceEncoding("\xff", UTF8),
			)).To(matcher.Equal(1))
		})
	})

	// to_str is only an indicator here, unlike Array#<=> which
	// converts with to_ary.
	root.Describe("String#<=>", func(g *spec.Group) {
		g.It("returns nil if its argument provides neither #to_str nor #<=>", func(env *spec.Env) {
			env.Expect(spaceship(env, "abc", env.Mock("x"))).To(matcher.BeNil())
		})

		g.It("uses the result of calling #to_str for comparison when #to_str is defined", func(env *spec.Env) {
			obj := env.Mock("x")
			obj.Expect("to_str").AndReturn("aaa")

			env.Expect(spaceship(env, "abc", obj)).To(matcher.Equal(1))
		})

		g.It("uses the result of calling #<=> on its argument when #<=> is defined but #to_str is not", func(env *spec.Env) {
			obj := env.Mock("x")
			obj.Expect("<=>").AndReturn(-1)

			env.Expect(spaceship(env, "abc", obj)).To(matcher.Equal(1))
		})

		g.It("returns nil if argument also uses an inverse comparison for <=>", func(env *spec.Env) {
			obj := env.Mock("x")
			obj.Expect("<=>").Once()

			env.Expect(spaceship(env, "abc", obj)).To(matcher.BeNil())
		})
	})

	operands := func(g *spec.Group, op func(a, b any) (bool, error)) {
		g.Context("when other is a symbol", func(g *spec.Group) {
			g.It("raises an error", func(env *spec.Env) {
				env.Expect(raises(op, "a", Symbol("a"))).To(matcher.RaiseError(fault.ArgumentError))
			})
		})
		g.Context("when other is a fixnum", func(g *spec.Group) {
			g.It("raises an error", func(env *spec.Env) {
				env.Expect(raises(op, "a", 1)).To(matcher.RaiseError(fault.ArgumentError))
			})
		})
		g.Context("when other is an object", func(g *spec.Group) {
			g.It("raises an error", func(env *spec.Env) {
				env.Expect(raises(op, "a", NewObject("obj"))).To(matcher.RaiseError(fault.ArgumentError))
			})
		})
	}

	root.Describe("String", func(g *spec.Group) {
		g.It("is Comparable", func(env *spec.Env) {
			env.Expect("a").To(matcher.Satisfy("be Comparable", func(v any) bool {
				_, err := matcher.Compare(v, v)
				return err == nil
			}))
		})

		g.Describe("#<", func(g *spec.Group) {
			g.Context("when other is a string", func(g *spec.Group) {
				g.It("returns true when value is less than other", func(env *spec.Env) {
					env.Expect(check(env, matcher.Less, "a", "b")).To(matcher.BeTrue())
				})
				g.It("returns false when value is greater than or equal to other", func(env *spec.Env) {
					env.Expect(check(env, matcher.Less, "b", "a")).To(matcher.BeFalse())
					env.Expect(check(env, matcher.Less, "a", "a")).To(matcher.BeFalse())
				})
			})
			operands(g, matcher.Less)
		})

		g.Describe("#<=", func(g *spec.Group) {
			g.Context("when other is a string", func(g *spec.Group) {
				g.It("returns true when value is less then or equal to other", func(env *spec.Env) {
					env.Expect(check(env, matcher.LessOrEqual, "a", "b")).To(matcher.BeTrue())
					env.Expect(check(env, matcher.LessOrEqual, "a", "a")).To(matcher.BeTrue())
				})
				g.It("returns false when value is greater than other", func(env *spec.Env) {
					env.Expect(check(env, matcher.LessOrEqual, "b", "a")).To(matcher.BeFalse())
				})
			})
			operands(g, matcher.LessOrEqual)
		})

		g.Describe("#==", func(g *spec.Group) {
			g.Context("when other is a string", func(g *spec.Group) {
				g.It("returns true when value is equal to other", func(env *spec.Env) {
					env.Expect(StringEquals("a", "a")).To(matcher.BeTrue())
				})
				g.It("returns false when value is less than or greater than other", func(env *spec.Env) {
					env.Expect(StringEquals("a", "b")).To(matcher.BeFalse())
					env.Expect(StringEquals("b", "a")).To(matcher.BeFalse())
				})
			})
			g.Context("when other is a symbol", func(g *spec.Group) {
				g.It("returns false", func(env *spec.Env) {
					env.Expect(StringEquals("a", Symbol("a"))).To(matcher.BeFalse())
				})
			})
			g.Context("when other is a fixnum", func(g *spec.Group) {
				g.It("returns false", func(env *spec.Env) {
					env.Expect(StringEquals("a", 1)).To(matcher.BeFalse())
				})
			})
			g.Context("when other is an object", func(g *spec.Group) {
				g.It("returns false", func(env *spec.Env) {
					env.Expect(StringEquals("a", NewObject("obj"))).To(matcher.BeFalse())
				})
			})
		})

		g.Describe("#>", func(g *spec.Group) {
			g.Context("when other is a string", func(g *spec.Group) {
				g.It("returns true when value is greater than other", func(env *spec.Env) {
					env.Expect(check(env, matcher.Greater, "b", "a")).To(matcher.BeTrue())
				})
				g.It("returns false when value is less than or equal to other", func(env *spec.Env) {
					env.Expect(check(env, matcher.Greater, "a", "b")).To(matcher.BeFalse())
					env.Expect(check(env, matcher.Greater, "a", "a")).To(matcher.BeFalse())
				})
			})
			operands(g, matcher.Greater)
		})

		g.Describe("#>=", func(g *spec.Group) {
			g.Context("when other is a string", func(g *spec.Group) {
				g.It("returns true when value is greater than or equal to other", func(env *spec.Env) {
					env.Expect(check(env, matcher.GreaterOrEqual, "b", "a")).To(matcher.BeTrue())
					env.Expect(check(env, matcher.GreaterOrEqual, "a", "a")).To(matcher.BeTrue())
				})
				g.It("returns false when value is less than other", func(env *spec.Env) {
					env.Expect(check(env, matcher.GreaterOrEqual, "a", "b")).To(matcher.BeFalse())
				})
			})
			operands(g, matcher.GreaterOrEqual)
		})

		g.Describe("#between?", func(g *spec.Group) {
			between := func(x, lo, hi any) func() error {
				return func() error {
					_, err := matcher.Between(x, lo, hi)
					return err
				}
			}
			in := func(env *spec.Env, x, lo, hi any) bool {
				ok, err := matcher.Between(x, lo, hi)
				env.Must(err)
				return ok
			}

			g.Context("when min and max are strings", func(g *spec.Group) {
				g.It("returns true when value is inside min and max, inclusive", func(env *spec.Env) {
					for _, x := range []string{"a", "b", "c"} {
						env.Expect(in(env, x, "a", "c")).To(matcher.BeTrue())
					}
				})
				g.It("returns false when value is outside min and max", func(env *spec.Env) {
					env.Expect(in(env, "d", "a", "c")).To(matcher.BeFalse())
				})
			})
			g.Context("when min and max are symbols", func(g *spec.Group) {
				g.It("raises an error", func(env *spec.Env) {
					env.Expect(between("a", Symbol("a"), Symbol("c"))).To(matcher.RaiseError(fault.ArgumentError))
				})
			})
			g.Context("when min and max are fixnums", func(g *spec.Group) {
				g.It("raises an error", func(env *spec.Env) {
					env.Expect(between("a", 1, 2)).To(matcher.RaiseError(fault.ArgumentError))
				})
			})
			g.Context("when min and max are objects", func(g *spec.Group) {
				g.It("raises an error", func(env *spec.Env) {
					env.Expect(between("a", NewObject("min"), NewObject("max"))).To(matcher.RaiseError(fault.ArgumentError))
				})
			})
		})
	})
}
