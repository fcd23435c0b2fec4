package sym

import "strings"

// Matrix is a rectangular matrix. Begin and End hold the markup that opened
// and closed the matrix in its source, e.g. `\begin{bmatrix}`; they are
// presentation only and do not take part in equality.
type Matrix struct {
	Rows       [][]Expr
	Begin, End string
}

// NewMatrix creates a matrix from row-major entries. The second result is
// false if the rows have different lengths or there are none.
func NewMatrix(rows [][]Expr) (*Matrix, bool) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, false
	}
	for _, r := range rows[1:] {
		if len(r) != len(rows[0]) {
			return nil, false
		}
	}
	return &Matrix{Rows: rows}, true
}

// WithMarkup returns a copy of m with the given markup.
func (m *Matrix) WithMarkup(begin, end string) *Matrix {
	return &Matrix{Rows: m.Rows, Begin: begin, End: end}
}

// Shape returns the number of rows and columns of m.
func (m *Matrix) Shape() (rows, cols int) {
	return len(m.Rows), len(m.Rows[0])
}

// Map returns a matrix with f applied to each entry, keeping m's markup.
func (m *Matrix) Map(f func(Expr) Expr) *Matrix {
	rows := make([][]Expr, len(m.Rows))
	for i, r := range m.Rows {
		rows[i] = make([]Expr, len(r))
		for j, x := range r {
			rows[i][j] = f(x)
		}
	}
	return &Matrix{Rows: rows, Begin: m.Begin, End: m.End}
}

func (m *Matrix) String() string {
	var b strings.Builder
	b.WriteString("Matrix([")
	for i, r := range m.Rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('[')
		for j, x := range r {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(x.String())
		}
		b.WriteByte(']')
	}
	b.WriteString("])")
	return b.String()
}

func (m *Matrix) prec() int { return precAtom }

// Transpose returns the transpose of m.
func Transpose(m *Matrix) *Matrix {
	r, c := m.Shape()
	rows := make([][]Expr, c)
	for j := range rows {
		rows[j] = make([]Expr, r)
		for i := range m.Rows {
			rows[j][i] = m.Rows[i][j]
		}
	}
	return &Matrix{Rows: rows, Begin: m.Begin, End: m.End}
}

// Adjoint returns the conjugate transpose of m.
func Adjoint(m *Matrix) *Matrix {
	return Transpose(m).Map(Conjugate)
}

// Conjugate returns the complex conjugate of x. Numbers and real symbols are
// their own conjugates.
func Conjugate(x Expr) Expr {
	switch v := x.(type) {
	case *Number:
		return v
	case *Symbol:
		if v.Is("real") || v.Is("positive") || v.Is("negative") || v.Is("integer") || v.Is("rational") {
			return v
		}
	case *Constant:
		switch v {
		case I:
			return Neg(I)
		case Pi, E, Infinity:
			return v
		}
	}
	return &Func{Name: "conjugate", Args: []Expr{x}}
}

// Det returns the determinant of a square matrix by cofactor expansion. The
// determinant of a non-square matrix is an unevaluated application.
func Det(m *Matrix) Expr {
	r, c := m.Shape()
	if r != c {
		return &Func{Name: "det", Args: []Expr{m}}
	}
	return det(m.Rows)
}

func det(rows [][]Expr) Expr {
	n := len(rows)
	switch n {
	case 1:
		return rows[0][0]
	case 2:
		return Sub(MulOf(rows[0][0], rows[1][1]), MulOf(rows[0][1], rows[1][0]))
	}
	terms := make([]Expr, 0, n)
	for j := 0; j < n; j++ {
		minor := make([][]Expr, 0, n-1)
		for _, r := range rows[1:] {
			row := make([]Expr, 0, n-1)
			row = append(row, r[:j]...)
			row = append(row, r[j+1:]...)
			minor = append(minor, row)
		}
		t := MulOf(rows[0][j], det(minor))
		if j%2 == 1 {
			t = Neg(t)
		}
		terms = append(terms, t)
	}
	return AddOf(terms...)
}

// addMatrices adds terms elementwise if they are all matrices of one shape.
func addMatrices(terms []Expr) (Expr, bool) {
	if len(terms) < 2 {
		return nil, false
	}
	first, ok := terms[0].(*Matrix)
	if !ok {
		return nil, false
	}
	r, c := first.Shape()
	for _, t := range terms[1:] {
		m, ok := t.(*Matrix)
		if !ok {
			return nil, false
		}
		if mr, mc := m.Shape(); mr != r || mc != c {
			return nil, false
		}
	}
	rows := make([][]Expr, r)
	for i := range rows {
		rows[i] = make([]Expr, c)
		for j := range rows[i] {
			s := make([]Expr, len(terms))
			for k, t := range terms {
				s[k] = t.(*Matrix).Rows[i][j]
			}
			rows[i][j] = AddOf(s...)
		}
	}
	return &Matrix{Rows: rows, Begin: first.Begin, End: first.End}, true
}

// mulMatrices evaluates a product containing matrices: scalar factors scale
// the result and matrices multiply in order. The second result is false if
// there are no matrices or their shapes are incompatible.
func mulMatrices(factors []Expr) (Expr, bool) {
	var scalars []Expr
	var acc *Matrix
	for _, f := range factors {
		m, ok := f.(*Matrix)
		if !ok {
			scalars = append(scalars, f)
			continue
		}
		if acc == nil {
			acc = m
			continue
		}
		p, ok := matMul(acc, m)
		if !ok {
			return nil, false
		}
		acc = p
	}
	if acc == nil {
		return nil, false
	}
	if len(scalars) == 0 {
		return acc, true
	}
	s := MulOf(scalars...)
	return acc.Map(func(x Expr) Expr { return MulOf(s, x) }), true
}

func matMul(a, b *Matrix) (*Matrix, bool) {
	ar, ac := a.Shape()
	br, bc := b.Shape()
	if ac != br {
		return nil, false
	}
	rows := make([][]Expr, ar)
	for i := range rows {
		rows[i] = make([]Expr, bc)
		for j := range rows[i] {
			s := make([]Expr, ac)
			for k := range s {
				s[k] = MulOf(a.Rows[i][k], b.Rows[k][j])
			}
			rows[i][j] = AddOf(s...)
		}
	}
	return &Matrix{Rows: rows, Begin: a.Begin, End: a.End}, true
}

func matPow(m *Matrix, k int) (*Matrix, bool) {
	r := m
	for i := 1; i < k; i++ {
		p, ok := matMul(r, m)
		if !ok {
			return nil, false
		}
		r = p
	}
	return r, true
}

// RREF returns the reduced row echelon form of m. Elimination is exact and
// only runs when every entry is a number; otherwise the result is an
// unevaluated application.
func RREF(m *Matrix) Expr {
	rows := make([][]*Number, len(m.Rows))
	for i, r := range m.Rows {
		rows[i] = make([]*Number, len(r))
		for j, x := range r {
			n, ok := x.(*Number)
			if !ok {
				return &Func{Name: "rref", Args: []Expr{m}}
			}
			rows[i][j] = n
		}
	}
	// Numbers combine into numbers.
	num := func(x Expr) *Number { return x.(*Number) }
	nr, nc := m.Shape()
	lead := 0
	for col := 0; col < nc && lead < nr; col++ {
		piv := -1
		for i := lead; i < nr; i++ {
			if !rows[i][col].isZero() {
				piv = i
				break
			}
		}
		if piv < 0 {
			continue
		}
		rows[lead], rows[piv] = rows[piv], rows[lead]
		inv := PowOf(rows[lead][col], negOne)
		for j := range rows[lead] {
			rows[lead][j] = num(MulOf(rows[lead][j], inv))
		}
		for i := range rows {
			if i == lead || rows[i][col].isZero() {
				continue
			}
			f := rows[i][col]
			for j := range rows[i] {
				rows[i][j] = num(Sub(rows[i][j], MulOf(f, rows[lead][j])))
			}
		}
		lead++
	}
	out := make([][]Expr, nr)
	for i, r := range rows {
		out[i] = make([]Expr, nc)
		for j, x := range r {
			out[i][j] = x
		}
	}
	return &Matrix{Rows: out, Begin: m.Begin, End: m.End}
}
