package checker

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"refinecore/internal/diag"
	"refinecore/internal/rty"
)

type fileDecl struct {
	Adts []*adtDecl `yaml:"adts"`
}

type adtDecl struct {
	Name       string         `yaml:"name"`
	Params     []paramDecl    `yaml:"params"`
	Generics   int            `yaml:"generics"`
	Variants   []*variantDecl `yaml:"variants"`
	Invariants []yaml.Node    `yaml:"invariants"`
}

// paramDecl is written either as a bare name, for an int index, or as a
// one-entry mapping from the name to its sort.
type paramDecl struct {
	Name string
	Sort rty.Sort
}

func (p *paramDecl) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		p.Name, p.Sort = value.Value, rty.IntSort
		return nil
	case yaml.MappingNode:
		if len(value.Content) != 2 {
			return errors.Errorf("line %d: parameter must map one name to its sort", value.Line)
		}
		p.Name = value.Content[0].Value
		switch value.Content[1].Value {
		case "int":
			p.Sort = rty.IntSort
		case "bool":
			p.Sort = rty.BoolSort
		default:
			return errors.Errorf("line %d: unknown sort `%s`", value.Line, value.Content[1].Value)
		}
		return nil
	}
	return errors.Errorf("line %d: invalid parameter", value.Line)
}

type variantDecl struct {
	Name   string    `yaml:"name"`
	Fields []*tyDecl `yaml:"fields"`
	Ret    []string  `yaml:"ret"`
}

type tyDecl struct {
	Base   string    `yaml:"base"`
	Args   []*tyDecl `yaml:"args"`
	Index  []string  `yaml:"index"`
	Exists []string  `yaml:"exists"`
	Where  string    `yaml:"where"`
	Ref    string    `yaml:"ref"`
	To     *tyDecl   `yaml:"to"`
	Param  *int      `yaml:"param"`
}

// LoadFile reads the ADT declarations of a YAML file.
func LoadFile(path string) ([]*rty.AdtDef, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return Load(buff, path)
}

// Load decodes ADT declarations. ADTs may refer to each other in any order.
func Load(buff []byte, file string) ([]*rty.AdtDef, error) {
	decl := &fileDecl{}
	if err := yaml.Unmarshal(buff, decl); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", file)
	}

	l := &loader{file: file, defs: make(map[string]*rty.AdtDef)}
	defs := make([]*rty.AdtDef, len(decl.Adts))
	for i, adt := range decl.Adts {
		if adt.Name == "" {
			return nil, errors.Errorf("%s: ADT %d has no name", file, i)
		}
		if _, ok := l.defs[adt.Name]; ok {
			return nil, errors.Errorf("%s: ADT `%s` declared twice", file, adt.Name)
		}
		def := &rty.AdtDef{Name: adt.Name, Generics: adt.Generics}
		for _, p := range adt.Params {
			def.Params = append(def.Params, p.Name)
			def.Sorts = append(def.Sorts, p.Sort)
		}
		l.defs[adt.Name] = def
		defs[i] = def
	}
	for i, adt := range decl.Adts {
		if err := l.fill(defs[i], adt); err != nil {
			return nil, errors.Wrapf(err, "%s: ADT `%s`", file, adt.Name)
		}
	}
	return defs, nil
}

type loader struct {
	file string
	defs map[string]*rty.AdtDef
}

func (l *loader) fill(def *rty.AdtDef, adt *adtDecl) error {
	params := make(scope, len(def.Params)).with(def.Params, rty.EBound)

	if len(adt.Variants) == 0 {
		return errors.New("no variants")
	}
	for i, v := range adt.Variants {
		variant := &rty.VariantDef{Name: v.Name}
		if variant.Name == "" {
			variant.Name = def.Name
		}
		for j, field := range v.Fields {
			ty, err := l.ty(field, def, params)
			if err != nil {
				return errors.Wrapf(err, "variant %d field %d", i, j)
			}
			variant.Fields = append(variant.Fields, ty)
		}
		if v.Ret != nil {
			if len(v.Ret) != len(def.Sorts) {
				return errors.Errorf("variant %d returns %d indices, expected %d", i, len(v.Ret), len(def.Sorts))
			}
			ret, err := parseExprs(v.Ret, params)
			if err != nil {
				return errors.Wrapf(err, "variant %d", i)
			}
			variant.Ret = ret
		}
		def.Variants = append(def.Variants, variant)
	}

	for _, node := range adt.Invariants {
		pred, err := parseExpr(node.Value, params)
		if err != nil {
			return errors.Wrapf(err, "invariant at line %d", node.Line)
		}
		def.Invariants = append(def.Invariants, &rty.Invariant{
			Pred: pred,
			Span: diag.Span{File: l.file, Line: node.Line, Column: node.Column},
		})
	}
	return nil
}

func (l *loader) ty(decl *tyDecl, owner *rty.AdtDef, sc scope) (rty.Ty, error) {
	if decl == nil {
		return nil, errors.New("missing type")
	}
	switch {
	case decl.Param != nil:
		if *decl.Param < 0 || *decl.Param >= owner.Generics {
			return nil, errors.Errorf("type parameter %d out of range", *decl.Param)
		}
		return rty.NewParam(*decl.Param), nil
	case decl.Ref != "":
		var mode rty.RefKind
		switch decl.Ref {
		case "shr":
			mode = rty.Shr
		case "mut":
			mode = rty.Mut
		default:
			return nil, errors.Errorf("unknown reference mode `%s`", decl.Ref)
		}
		to, err := l.ty(decl.To, owner, sc)
		if err != nil {
			return nil, err
		}
		return rty.NewRef(mode, to), nil
	}

	bty, err := l.bty(decl, owner, sc)
	if err != nil {
		return nil, err
	}
	sorts := bty.Sorts()
	if decl.Exists != nil {
		if len(decl.Exists) != len(sorts) {
			return nil, errors.Errorf("`%s` binds %d indices, got %d names", bty, len(sorts), len(decl.Exists))
		}
		pred := rty.PredTrue()
		if decl.Where != "" {
			e, err := parseExpr(decl.Where, sc.with(decl.Exists, rty.ENu))
			if err != nil {
				return nil, err
			}
			pred = rty.PredOf(e)
		}
		return rty.NewExists(bty, pred), nil
	}
	if len(decl.Index) != len(sorts) {
		return nil, errors.Errorf("`%s` takes %d indices, got %d", bty, len(sorts), len(decl.Index))
	}
	indices, err := parseExprs(decl.Index, sc)
	if err != nil {
		return nil, err
	}
	return rty.NewIndexed(bty, indices...), nil
}

var intTyPattern = regexp.MustCompile(`^([iu])(8|16|32|64|128|size)$`)

func (l *loader) bty(decl *tyDecl, owner *rty.AdtDef, sc scope) (rty.BaseTy, error) {
	if decl.Base == "bool" {
		return rty.NewBoolTy(), nil
	}
	if m := intTyPattern.FindStringSubmatch(decl.Base); m != nil {
		bits := uint64(64)
		if m[2] != "size" {
			bits, _ = strconv.ParseUint(m[2], 10, 32)
		}
		if m[1] == "i" {
			return rty.NewInt(uint(bits)), nil
		}
		return rty.NewUint(uint(bits)), nil
	}

	def, ok := l.defs[decl.Base]
	if !ok {
		if strings.TrimSpace(decl.Base) == "" {
			return nil, errors.New("type has no base")
		}
		return nil, errors.Errorf("unknown type `%s`", decl.Base)
	}
	if len(decl.Args) != def.Generics {
		return nil, errors.Errorf("`%s` takes %d type arguments, got %d", def.Name, def.Generics, len(decl.Args))
	}
	args := make([]rty.Ty, len(decl.Args))
	for i, arg := range decl.Args {
		ty, err := l.ty(arg, owner, sc)
		if err != nil {
			return nil, err
		}
		args[i] = ty
	}
	return rty.NewAdt(def, args...), nil
}
