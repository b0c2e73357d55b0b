package importer

// Importable entity type keys.
const (
	EntityTypeClients     = "clients"
	EntityTypePolicies    = "policies"
	EntityTypeCommissions = "commissions"
)

// Recognized field names shared by the mapping resolver, validator and
// reconciliation engine.
const (
	FieldName              = "name"
	FieldCPFCNPJ           = "cpf_cnpj"
	FieldEmail             = "email"
	FieldPhone             = "phone"
	FieldBirthDate         = "birth_date"
	FieldAddressStreet     = "address_street"
	FieldAddressNumber     = "address_number"
	FieldAddressComplement = "address_complement"
	FieldAddressDistrict   = "address_district"
	FieldAddressCity       = "address_city"
	FieldAddressState      = "address_state"
	FieldAddressZip        = "address_zip"

	FieldPolicyNumber   = "policy_number"
	FieldClientCPFCNPJ  = "client_cpf_cnpj"
	FieldInsurer        = "insurer"
	FieldProduct        = "product"
	FieldLineOfBusiness = "line_of_business"
	FieldStartDate      = "start_date"
	FieldEndDate        = "end_date"
	FieldPremiumAmount  = "premium_amount"
	FieldCommissionRate = "commission_rate"
	FieldPaymentMethod  = "payment_method"

	FieldGrossAmount = "gross_amount"
	FieldRate        = "rate"
	FieldNetAmount   = "net_amount"
	FieldPaymentDate = "payment_date"
	FieldNotes       = "notes"
)

// FieldSpec describes one target field of an entity type. Aliases are
// the spreadsheet labels the mapping resolver matches against, in
// addition to the field name itself (uploads are usually pt-BR).
type FieldSpec struct {
	Name    string
	Aliases []string
}

// EntityTypeConfig is the static description of one importable entity
// type: its fields, the required subset, the natural key used to find
// an existing record, and the storage collection it lands in.
type EntityTypeConfig struct {
	Key              string
	Fields           []FieldSpec
	RequiredFields   []string
	NaturalKey       []string
	TargetCollection string
}

// FieldNames returns the target field names in declaration order.
func (c EntityTypeConfig) FieldNames() []string {
	names := make([]string, len(c.Fields))
	for i, f := range c.Fields {
		names[i] = f.Name
	}
	return names
}

// Registry is the catalog of importable entity types. It is built once
// at startup and passed in explicitly so tests can swap it.
type Registry struct {
	configs map[string]EntityTypeConfig
	order   []string
}

// NewRegistry builds a registry from the given configs, preserving
// declaration order for listing.
func NewRegistry(configs ...EntityTypeConfig) *Registry {
	r := &Registry{configs: make(map[string]EntityTypeConfig, len(configs))}
	for _, cfg := range configs {
		if _, exists := r.configs[cfg.Key]; exists {
			continue
		}
		r.configs[cfg.Key] = cfg
		r.order = append(r.order, cfg.Key)
	}
	return r
}

// Get returns the config for a type key.
func (r *Registry) Get(key string) (EntityTypeConfig, bool) {
	cfg, ok := r.configs[key]
	return cfg, ok
}

// Keys lists the registered type keys in declaration order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.order))
	copy(keys, r.order)
	return keys
}

// DefaultRegistry returns the catalog of the three importable entity
// types of the back office.
func DefaultRegistry() *Registry {
	return NewRegistry(
		EntityTypeConfig{
			Key: EntityTypeClients,
			Fields: []FieldSpec{
				{Name: FieldName, Aliases: []string{"nome", "cliente", "razao social"}},
				{Name: FieldCPFCNPJ, Aliases: []string{"cpf", "cnpj", "documento"}},
				{Name: FieldEmail, Aliases: []string{"e-mail"}},
				{Name: FieldPhone, Aliases: []string{"telefone", "celular", "fone"}},
				{Name: FieldBirthDate, Aliases: []string{"nascimento", "data de nascimento"}},
				{Name: FieldAddressStreet, Aliases: []string{"logradouro", "endereco", "rua"}},
				{Name: FieldAddressNumber, Aliases: []string{"numero"}},
				{Name: FieldAddressComplement, Aliases: []string{"complemento"}},
				{Name: FieldAddressDistrict, Aliases: []string{"bairro"}},
				{Name: FieldAddressCity, Aliases: []string{"cidade", "municipio"}},
				{Name: FieldAddressState, Aliases: []string{"estado", "uf"}},
				{Name: FieldAddressZip, Aliases: []string{"cep"}},
			},
			RequiredFields:   []string{FieldName, FieldCPFCNPJ},
			NaturalKey:       []string{FieldCPFCNPJ},
			TargetCollection: "clients",
		},
		EntityTypeConfig{
			Key: EntityTypePolicies,
			Fields: []FieldSpec{
				{Name: FieldPolicyNumber, Aliases: []string{"apolice", "numero da apolice", "numero apolice"}},
				{Name: FieldClientCPFCNPJ, Aliases: []string{"cpf do cliente", "cpf", "cnpj", "documento do cliente"}},
				{Name: FieldInsurer, Aliases: []string{"seguradora", "companhia"}},
				{Name: FieldProduct, Aliases: []string{"produto"}},
				{Name: FieldLineOfBusiness, Aliases: []string{"ramo"}},
				{Name: FieldStartDate, Aliases: []string{"inicio vigencia", "inicio de vigencia", "vigencia inicio"}},
				{Name: FieldEndDate, Aliases: []string{"fim vigencia", "fim de vigencia", "vigencia fim"}},
				{Name: FieldPremiumAmount, Aliases: []string{"premio", "premio liquido", "premio total"}},
				{Name: FieldCommissionRate, Aliases: []string{"comissao", "percentual de comissao"}},
				{Name: FieldPaymentMethod, Aliases: []string{"forma de pagamento", "pagamento"}},
			},
			RequiredFields:   []string{FieldPolicyNumber, FieldClientCPFCNPJ, FieldInsurer},
			NaturalKey:       []string{FieldPolicyNumber},
			TargetCollection: "policies",
		},
		EntityTypeConfig{
			Key: EntityTypeCommissions,
			Fields: []FieldSpec{
				{Name: FieldPolicyNumber, Aliases: []string{"apolice", "numero da apolice", "numero apolice"}},
				{Name: FieldGrossAmount, Aliases: []string{"valor bruto", "comissao bruta"}},
				{Name: FieldRate, Aliases: []string{"percentual", "taxa"}},
				{Name: FieldNetAmount, Aliases: []string{"valor liquido", "comissao liquida"}},
				{Name: FieldPaymentDate, Aliases: []string{"data de pagamento", "pagamento"}},
				{Name: FieldNotes, Aliases: []string{"observacao", "observacoes", "obs"}},
			},
			RequiredFields: []string{FieldPolicyNumber, FieldGrossAmount},
			// Commissions have no natural key: every committed row inserts.
			NaturalKey:       nil,
			TargetCollection: "commissions",
		},
	)
}
